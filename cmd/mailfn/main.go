// Command mailfn is the email function: it renders invitation and confirmation emails and
// forwards them to the configured mail provider.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"synathrozo/config"
	"synathrozo/internal/adapters/email"
	deliveryhttp "synathrozo/internal/delivery/http"
	"synathrozo/internal/delivery/http/controllers"
	"synathrozo/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := config.NewLogger()

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mail.Provider,
		FromAddress: cfg.Mail.FromAddress,
		FromName:    cfg.Mail.FromName,
		SES: email.SESConfig{
			Region:          cfg.Mail.AWSRegion,
			AccessKeyID:     cfg.Mail.AWSAccessKey,
			SecretAccessKey: cfg.Mail.AWSSecretKey,
		},
		API: email.APIConfig{
			URL: cfg.Mail.APIURL,
			Key: cfg.Mail.APIKey,
		},
	}, logger)
	if err != nil {
		log.Fatalf("Failed to create mailer: %v", err)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		log.Fatalf("Failed to load email templates: %v", err)
	}

	svc := services.NewInvitationEmailService(mailer, renderer, logger)
	if cfg.EmailFunctionKey == "" {
		logger.Warn("EMAIL_FUNCTION_KEY is empty; the function accepts unauthenticated requests")
	}
	handler := deliveryhttp.NewEmailFunctionRouter(logger, controllers.NewEmailController(logger, svc, cfg.EmailFunctionKey))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := deliveryhttp.Serve(ctx, logger, ":"+cfg.Port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
