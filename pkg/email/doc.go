// Package email provides a provider-agnostic interface for sending
// transactional emails, with built-in support for Postmark.
//
// Subscriber-facing campaign email goes through the ESP integration; this
// package carries the operational mail the product itself sends, such as
// admin alerts when a scheduled generation run fails.
//
// # Architecture
//
// The package is built around the EmailSender interface, allowing different
// email providers to be swapped without changing application code. Currently
// supported:
//   - PostmarkClient for production email delivery with tracking
//   - DevSender for local development (saves emails to disk)
//
// All implementations validate email parameters before sending and provide
// consistent error handling across providers.
//
// # Usage
//
//	import "github.com/harmonia-labs/harmonia/pkg/email"
//
//	cfg := email.Config{
//	    PostmarkServerToken:  "your-server-token",
//	    PostmarkAccountToken: "your-account-token",
//	    SenderEmail:          "noreply@example.com",
//	    SupportEmail:         "support@example.com",
//	}
//
//	client, err := email.NewPostmarkClient(cfg)
//	if err != nil {
//	    // Handle configuration error
//	}
//
//	err = client.SendEmail(ctx, email.SendEmailParams{
//	    SendTo:   "admin@example.com",
//	    Subject:  "Generation run failed",
//	    BodyHTML: htmlContent,
//	    Tag:      "generation-alert", // optional, for analytics
//	})
//
// Development mode saves emails locally:
//
//	devSender := email.NewDevSender("./email-output")
//	err := devSender.SendEmail(ctx, params)
//	// Creates timestamped HTML and JSON files in ./email-output/
//
// # Error Handling
//
// The package provides sentinel errors for common failure scenarios:
//   - ErrInvalidConfig: Configuration validation failed
//   - ErrFailedToSendEmail: Email delivery failed
//
// All errors can be checked using errors.Is() for programmatic handling.
package email
