package config

import "time"

// SMTPConfig represents the configuration for the outbound SMTP relay
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	FromName string
}

// SendConfig represents the rate and quota configuration for sending
type SendConfig struct {
	EmailsPerMinute int
	DailyCap        int
}

// VerifyConfig represents the configuration for the verification engine
type VerifyConfig struct {
	Strategy        string
	FromEmail       string
	HeloDomain      string
	Timeout         time.Duration
	Delay           time.Duration
	CatchAllSamples int
	TrustedDomains  []string
}

// SchedulerConfig represents the configuration for the send scheduler
type SchedulerConfig struct {
	StoreType   string
	SQLitePath  string
	MySQLDSN    string
	CrashPolicy string
}

// SendTimeConfig represents the optimal send time configuration
type SendTimeConfig struct {
	Timezone string
	Hours    []int
	Weekdays []int
}

// GetSMTP returns the outbound SMTP configuration
func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		Host:     c.GetString("smtp.host"),
		Port:     c.GetInt("smtp.port"),
		Username: c.GetString("smtp.username"),
		Password: c.GetString("smtp.password"),
		FromName: c.GetString("smtp.from_name"),
	}
}

// GetSend returns the sending configuration
func (c *Config) GetSend() SendConfig {
	return SendConfig{
		EmailsPerMinute: c.GetInt("send.emails_per_minute"),
		DailyCap:        c.GetInt("send.daily_cap"),
	}
}

// GetVerify returns the verification configuration
func (c *Config) GetVerify() (VerifyConfig, error) {
	timeout, err := c.GetDuration("verify.timeout")
	if err != nil {
		return VerifyConfig{}, err
	}
	delay, err := c.GetDuration("verify.delay")
	if err != nil {
		return VerifyConfig{}, err
	}
	return VerifyConfig{
		Strategy:        c.GetString("verify.strategy"),
		FromEmail:       c.GetString("verify.from_email"),
		HeloDomain:      c.GetString("verify.helo_domain"),
		Timeout:         timeout,
		Delay:           delay,
		CatchAllSamples: c.GetInt("verify.catch_all_samples"),
		TrustedDomains:  c.GetStringSlice("verify.trusted_domains"),
	}, nil
}

// GetScheduler returns the scheduler configuration
func (c *Config) GetScheduler() SchedulerConfig {
	return SchedulerConfig{
		StoreType:   c.GetString("scheduler.store_type"),
		SQLitePath:  c.GetString("scheduler.sqlite_path"),
		MySQLDSN:    c.GetString("scheduler.mysql_dsn"),
		CrashPolicy: c.GetString("scheduler.crash_policy"),
	}
}

// GetSendTime returns the optimal send time configuration
func (c *Config) GetSendTime() SendTimeConfig {
	return SendTimeConfig{
		Timezone: c.GetString("sendtime.timezone"),
		Hours:    c.GetIntSlice("sendtime.hours"),
		Weekdays: c.GetIntSlice("sendtime.weekdays"),
	}
}
