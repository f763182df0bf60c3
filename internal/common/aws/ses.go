// internal/common/aws/ses.go
package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAPI is the part of the SES client the mailer uses.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Mailer sends plain text and HTML email through SES.
type Mailer struct {
	client SESAPI
	from   string
}

func NewMailer(client SESAPI, from string) *Mailer {
	return &Mailer{client: client, from: from}
}

// NewSESMailer builds a Mailer on the SDK client for cfg.
func NewSESMailer(cfg awssdk.Config, from string) *Mailer {
	return NewMailer(ses.NewFromConfig(cfg), from)
}

// Send delivers one message and returns the SES message id.
func (m *Mailer) Send(ctx context.Context, to []string, subject, text, html string) (string, error) {
	if len(to) == 0 {
		return "", fmt.Errorf("send email: no recipients")
	}

	body := &types.Body{Text: &types.Content{Data: awssdk.String(text), Charset: awssdk.String("UTF-8")}}
	if html != "" {
		body.Html = &types.Content{Data: awssdk.String(html), Charset: awssdk.String("UTF-8")}
	}

	out, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: to},
		Message: &types.Message{
			Subject: &types.Content{Data: awssdk.String(subject), Charset: awssdk.String("UTF-8")},
			Body:    body,
		},
		Source: awssdk.String(m.from),
	})
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	return awssdk.ToString(out.MessageId), nil
}
