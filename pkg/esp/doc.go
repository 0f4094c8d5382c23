// Package esp implements the pluggable email-service-provider layer.
//
// A Provider adapts one external email marketing service (SendGrid,
// MailerLite, Brevo, Omnisend, or an admin-defined webhook endpoint) to a
// fixed capability contract: add a subscriber to a list, send a
// transactional email, and test that the configured credentials
// authenticate. Each adapter owns the bespoke request shape, auth header,
// and error-envelope parsing of its service; everything else in the
// system talks only to the uniform result types.
//
// The Registry is the process-wide table of registered providers plus the
// "currently active" selection. Capability methods never return Go errors
// or panic across the registry boundary: network failures, non-2xx
// statuses, and malformed response bodies are all folded into the result's
// Error string, so a third-party outage can never abort local processing.
//
//	reg := esp.NewRegistry()
//	_ = reg.Register(esp.NewBrevo())
//	_ = reg.Configure("brevo", esp.Config{APIKey: "xkeysib-..."})
//	_ = reg.SetActive("brevo")
//
//	p, err := reg.Active()
//	if err == nil {
//		res := p.AddSubscriber(ctx, esp.SubscriberInput{Email: "a@b.co", Name: "Ann Lee"})
//		if !res.Success {
//			log.Warn("subscriber sync failed", "error", res.Error)
//		}
//	}
package esp
