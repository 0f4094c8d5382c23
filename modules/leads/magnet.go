package leads

import "fmt"

// leadMagnetEmail builds the welcome email every new lead receives. The
// body links the communication-scripts download and carries the one-click
// unsubscribe link required by list hygiene rules.
func leadMagnetEmail(firstName, siteBaseURL, unsubscribeURL string) (subject, html string) {
	greeting := "Hi there"
	if firstName != "" {
		greeting = "Hi " + firstName
	}

	subject = "Your free communication scripts are here"
	html = fmt.Sprintf(`<div>
<p>%s,</p>
<p>Thanks for joining. Here is your download: <a href="%s/downloads/communication-scripts.pdf">50 Communication Scripts for Difficult Conversations</a>.</p>
<p>If you have not taken our relationship assessment yet, it takes about three minutes: <a href="%s/quiz">start the quiz</a>.</p>
<p style="font-size:12px;color:#888">No longer interested? <a href="%s">Unsubscribe</a> with one click.</p>
</div>`, greeting, siteBaseURL, siteBaseURL, unsubscribeURL)

	return subject, html
}
