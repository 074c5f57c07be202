package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/google/uuid"

	"synathrozo/internal/domain"
)

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint overrides the SES endpoint, e.g. for a local emulator.
	Endpoint string
}

// APIConfig holds configuration for an HTTP transactional mail API that accepts
// {from, to, subject, html, text} and answers {id}.
type APIConfig struct {
	URL    string
	Key    string
	Client *http.Client
}

// MailerConfig holds configuration for creating a mailer.
type MailerConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	SES         SESConfig
	API         APIConfig
}

// NewMailer creates a mailer from config. Provider "ses" uses AWS SES, "http" uses the mail API;
// "noop" or unknown uses a no-op mailer.
func NewMailer(config MailerConfig, logger *slog.Logger) (domain.Mailer, error) {
	from := config.FromAddress
	if config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", config.FromName, config.FromAddress)
	}
	switch config.Provider {
	case "ses":
		awsCfg := aws.Config{
			Region: config.SES.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					config.SES.AccessKeyID,
					config.SES.SecretAccessKey,
					"",
				),
			),
		}
		client := ses.NewFromConfig(awsCfg, func(o *ses.Options) {
			if config.SES.Endpoint != "" {
				o.BaseEndpoint = aws.String(config.SES.Endpoint)
			}
		})
		return &sesMailer{client: client, from: from, logger: logger}, nil
	case "http":
		if config.API.URL == "" || config.API.Key == "" {
			return nil, errors.New("mail API requires MAIL_API_URL and MAIL_API_KEY")
		}
		client := config.API.Client
		if client == nil {
			client = http.DefaultClient
		}
		return &apiMailer{client: client, url: config.API.URL, key: config.API.Key, from: from, logger: logger}, nil
	case "noop", "":
		return &noopMailer{logger: logger}, nil
	default:
		logger.Warn("unknown email provider, using noop", "provider", config.Provider)
		return &noopMailer{logger: logger}, nil
	}
}

// sesAPI is the subset of the SES client the mailer uses.
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type sesMailer struct {
	client sesAPI
	from   string
	logger *slog.Logger
}

func (s *sesMailer) Send(ctx context.Context, to, subject, html, text string) (string, error) {
	input := &ses.SendEmailInput{
		Source: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}
	if html != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(html),
			Charset: aws.String("UTF-8"),
		}
	}
	if text != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(text),
			Charset: aws.String("UTF-8"),
		}
	}
	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to send email via SES: %w", err)
	}
	id := aws.ToString(result.MessageId)
	s.logger.InfoContext(ctx, "email sent via SES", "message_id", id)
	return id, nil
}

type apiRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
}

type apiResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type apiMailer struct {
	client *http.Client
	url    string
	key    string
	from   string
	logger *slog.Logger
}

func (m *apiMailer) Send(ctx context.Context, to, subject, html, text string) (string, error) {
	body, err := json.Marshal(apiRequest{From: m.from, To: []string{to}, Subject: subject, HTML: html, Text: text})
	if err != nil {
		return "", fmt.Errorf("failed to encode email: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.key)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	var out apiResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if out.Message != "" {
			return "", errors.New(out.Message)
		}
		return "", errors.New("Failed to send email")
	}
	if decodeErr != nil {
		return "", fmt.Errorf("failed to decode mail API response: %w", decodeErr)
	}
	m.logger.InfoContext(ctx, "email sent via API", "message_id", out.ID)
	return out.ID, nil
}

type noopMailer struct {
	logger *slog.Logger
}

func (n *noopMailer) Send(ctx context.Context, to, subject, html, text string) (string, error) {
	n.logger.InfoContext(ctx, "email would be sent (noop)", "to", to, "subject", subject)
	return "noop-" + uuid.NewString(), nil
}
