package draft

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mikey/cold-outreach/internal/core"
	"github.com/mikey/cold-outreach/internal/utils"
)

const maxScanSummarySize = 4096

const initialTemplate = `Hi %s,

I came across %s and noticed a few things about your website that could be helping you connect with more serious homeowners.

%s

A solid website does the heavy lifting for you: showing your licenses, building trust, and making it easy for the right clients to reach out.

Would you be open to a quick call this week to chat about it?

Best,
[Your Name]`

const followupTemplate = `Hi %s,

Just wanted to follow up on my last email. I know you're busy, but I really think there's a quick win here for %s.

%s

Let me know if you'd like to connect.

Best,
[Your Name]`

const replyTemplate = `Hi %s,

Thanks for getting back to me!

%s

I'm happy to hop on a quick call whenever works for you. What does your schedule look like this week?

Best,
[Your Name]`

// Drafter generates template-based outreach drafts in a consultant
// voice, personalized from the lead record and its website scan.
type Drafter struct {
	text   *utils.TextProcessor
	titler cases.Caser
	logger *zap.Logger
}

// NewDrafter creates a new template drafter
func NewDrafter(text *utils.TextProcessor, logger *zap.Logger) *Drafter {
	return &Drafter{
		text:   text,
		titler: cases.Title(language.English),
		logger: logger,
	}
}

// Initial generates the first cold email for a lead
func (d *Drafter) Initial(lead *core.Lead) core.EmailDraft {
	observations := d.observations(lead)

	body := fmt.Sprintf(initialTemplate,
		d.firstName(lead),
		companyContext(lead),
		observations)

	var subject string
	switch {
	case lead.City != "":
		subject = fmt.Sprintf("Quick thought about your %s website", lead.City)
	case lead.Category != "":
		subject = fmt.Sprintf("A quick idea for your %s website", strings.ToLower(lead.Category))
	default:
		subject = "Quick thought about your website"
	}

	return core.EmailDraft{Subject: subject, Body: body}
}

// Followup generates the nth ghost follow-up for a lead
func (d *Drafter) Followup(lead *core.Lead, followupNumber int) core.EmailDraft {
	website := lead.Website
	if website == "" {
		website = "your site"
	}

	var reminder, subject string
	if followupNumber <= 1 {
		reminder = "I noticed a couple of things that could help you stand out to homeowners looking for reliable contractors."
		subject = fmt.Sprintf("Following up - %s", website)
	} else {
		reminder = "Just a gentle bump on my earlier email. Happy to share some ideas whenever you have a moment."
		subject = "Still interested in connecting?"
	}

	body := fmt.Sprintf(followupTemplate, d.firstName(lead), website, reminder)
	return core.EmailDraft{Subject: subject, Body: body}
}

// Reply generates a response to the lead's last reply, matched against
// common reply patterns
func (d *Drafter) Reply(lead *core.Lead, theirReply string) core.EmailDraft {
	replyLower := strings.ToLower(theirReply)

	var response string
	switch {
	case containsAny(replyLower, "interested", "tell me more", "curious", "sounds good"):
		response = "Great to hear you're interested! Based on what I saw on your site, I think we could make some impactful improvements that would help you attract more qualified leads from homeowners in your area."
	case containsAny(replyLower, "busy", "not right now", "maybe later"):
		response = "Totally understand, timing is everything. I'll keep this brief: when you're ready to look at the website, I'd be happy to walk you through a few quick ideas that won't take much of your time."
	case containsAny(replyLower, "cost", "price", "how much", "budget"):
		response = "Great question! The investment really depends on what you're looking to achieve. I'd love to understand your goals first so I can give you an accurate picture."
	case containsAny(replyLower, "who are you", "company", "about you"):
		response = "Happy to share! I help home improvement contractors build websites that actually convert visitors into qualified leads. The focus is on showing your expertise and building trust with homeowners."
	default:
		response = "I appreciate you getting back to me. I'd love to learn more about what you're looking for and see if there's a way I can help."
	}

	body := fmt.Sprintf(replyTemplate, d.firstName(lead), response)

	subject := "Re: Your website"
	if lead.EmailSubject != "" {
		subject = "Re: " + lead.EmailSubject
	}

	return core.EmailDraft{Subject: subject, Body: body}
}

// ForStep picks the draft matching the lead's current sequence position
func (d *Drafter) ForStep(lead *core.Lead) core.EmailDraft {
	switch lead.SequenceStep {
	case core.StepInitial:
		return d.Followup(lead, 1)
	case core.StepGhost1:
		return d.Followup(lead, 2)
	case core.StepReplied:
		return d.Reply(lead, lead.TheirLastReply)
	default:
		return d.Initial(lead)
	}
}

// firstName picks the salutation name: owner name, then business name,
// then a generic fallback
func (d *Drafter) firstName(lead *core.Lead) string {
	name := lead.OwnerName
	if name == "" {
		name = lead.Name
	}
	if name == "" {
		return "there"
	}
	if fields := strings.Fields(name); len(fields) > 0 {
		name = fields[0]
	}
	return d.titler.String(strings.ToLower(name))
}

// observations folds the website scan and manual notes into up to three
// bullet points
func (d *Drafter) observations(lead *core.Lead) string {
	var observations []string

	if lead.WebsiteScanSummary != "" {
		scan := strings.ToLower(d.text.ProcessText(lead.WebsiteScanSummary, maxScanSummarySize))
		if strings.Contains(scan, "slow") {
			observations = append(observations, "Your site seems to load a bit slowly, which can turn away potential customers before they even see your work.")
		}
		if strings.Contains(scan, "no meta description") {
			observations = append(observations, "The site could use some SEO improvements to help homeowners find you more easily on Google.")
		}
		if strings.Contains(scan, "not be mobile-friendly") {
			observations = append(observations, "It looks like the site might not be fully optimized for mobile, which is where most homeowners browse these days.")
		}
		if strings.Contains(scan, "wordpress") {
			observations = append(observations, "I see you're using WordPress, which is great for flexibility but might need some performance tuning.")
		}
	}

	if lead.Notes != "" {
		observations = append(observations, lead.Notes)
	}

	if len(observations) == 0 {
		observations = append(observations, "A few tweaks to the layout and messaging could help showcase your expertise and build trust with potential clients.")
	}
	if len(observations) > 3 {
		observations = observations[:3]
	}

	bullets := make([]string, len(observations))
	for i, obs := range observations {
		bullets[i] = "• " + obs
	}
	return strings.Join(bullets, "\n\n")
}

func companyContext(lead *core.Lead) string {
	switch {
	case lead.Category != "" && lead.City != "":
		return fmt.Sprintf("your %s business in %s", strings.ToLower(lead.Category), lead.City)
	case lead.Category != "":
		return fmt.Sprintf("your %s business", strings.ToLower(lead.Category))
	case lead.Website != "":
		return lead.Website
	default:
		return "your business"
	}
}

func containsAny(s string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
