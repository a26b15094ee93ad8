package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// EmailService delivers the platform's transactional mail.
type EmailService interface {
	SendOTPEmail(ctx context.Context, firstName, email, otp, lang string) error
}

// AWSSESEmailService sends emails using AWS SES
type AWSSESEmailService struct {
	sesClient   *ses.Client
	fromAddress string
	frontendURL string
	logger      *slog.Logger
}

// NewAWSSESEmailService creates a new AWS SES email service
func NewAWSSESEmailService(region, fromAddress, frontendURL string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		frontendURL: frontendURL,
		logger:      logger,
	}, nil
}

// SendOTPEmail sends the verification code, localized to the request language.
func (s *AWSSESEmailService) SendOTPEmail(ctx context.Context, firstName, email, otp, lang string) error {
	subject := "OTP Verification"
	var htmlBody, textBody string

	if lang == "ar" {
		subject = "رمز التحقق"
		htmlBody = fmt.Sprintf(`
<!DOCTYPE html>
<html dir="rtl" lang="ar">
<head><meta charset="UTF-8"></head>
<body>
	<p>مرحباً %s،</p>
	<p>رمز التحقق الخاص بك هو:</p>
	<h2>%s</h2>
	<p>إذا لم تطلب هذا الرمز، يمكنك تجاهل هذه الرسالة.</p>
	<p><a href="%s">%s</a></p>
</body>
</html>`, firstName, otp, s.frontendURL, s.frontendURL)
		textBody = fmt.Sprintf("مرحباً %s،\n\nرمز التحقق الخاص بك هو: %s\n", firstName, otp)
	} else {
		htmlBody = fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body>
	<p>Hello %s,</p>
	<p>Your verification code is:</p>
	<h2>%s</h2>
	<p>If you did not request this code, you can ignore this email.</p>
	<p><a href="%s">%s</a></p>
</body>
</html>`, firstName, otp, s.frontendURL, s.frontendURL)
		textBody = fmt.Sprintf("Hello %s,\n\nYour verification code is: %s\n", firstName, otp)
	}

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(htmlBody),
				},
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	if _, err := s.sesClient.SendEmail(ctx, input); err != nil {
		s.logger.Error("failed to send OTP email", slog.Any("error", err))
		return fmt.Errorf("error in sending email: %w", err)
	}

	s.logger.Info("OTP email sent")
	return nil
}
