package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"

	"github.com/yourusername/mathquiz-api/internal/handler/dto"
	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
)

// EmailService отправляет письма с формы обратной связи
type EmailService interface {
	SendContactMessage(ctx context.Context, msg dto.ContactRequest) error
}

// NoopEmailService используется, когда Resend не настроен
type NoopEmailService struct{}

// SendContactMessage только пишет в лог
func (s *NoopEmailService) SendContactMessage(ctx context.Context, msg dto.ContactRequest) error {
	log.Printf("[EmailService] noop contact message from=%s len=%d", msg.Email, len(msg.Message))
	return nil
}

// resendSender — часть клиента Resend, которой пользуется сервис
type resendSender interface {
	SendWithOptions(ctx context.Context, params *resend.SendEmailRequest, options *resend.SendEmailOptions) (*resend.SendEmailResponse, error)
}

// ResendEmailService отправляет письма через Resend REST API
type ResendEmailService struct {
	from   string
	to     string
	emails resendSender
}

// NewResendEmailService создает сервис отправки через Resend
func NewResendEmailService(apiKey, from, to string) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	if to == "" {
		return nil, fmt.Errorf("contact recipient is required")
	}
	return &ResendEmailService{
		from:   from,
		to:     to,
		emails: resend.NewClient(apiKey).Emails,
	}, nil
}

// SendContactMessage пересылает сообщение на адрес поддержки, Reply-To указывает на отправителя
func (s *ResendEmailService) SendContactMessage(ctx context.Context, msg dto.ContactRequest) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{s.to},
		ReplyTo: msg.Email,
		Subject: fmt.Sprintf("İletişim formu: %s", msg.Name),
		Text:    fmt.Sprintf("Gönderen: %s <%s>\n\n%s", msg.Name, msg.Email, msg.Message),
		Html: fmt.Sprintf("<p><strong>Gönderen:</strong> %s &lt;%s&gt;</p><p>%s</p>",
			html.EscapeString(msg.Name), html.EscapeString(msg.Email),
			strings.ReplaceAll(html.EscapeString(msg.Message), "\n", "<br>")),
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		_, err := s.emails.SendWithOptions(ctx, params, &resend.SendEmailOptions{})
		if err == nil {
			return nil
		}
		lastErr = err

		if wait, ok := resendRetryDelay(err, attempt); ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		return fmt.Errorf("%w: resend send failed: %v", apperrors.ErrUpstream, err)
	}

	return fmt.Errorf("%w: resend send failed after retries: %v", apperrors.ErrUpstream, lastErr)
}

func resendRetryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			if seconds > 30 {
				seconds = 30
			}
			return time.Duration(seconds) * time.Second, true
		}
		return time.Duration(attempt+1) * time.Second, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "temporar") {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	return 0, false
}

// ContactService принимает сообщения с формы обратной связи
type ContactService struct {
	email EmailService
}

// NewContactService создает сервис обратной связи
func NewContactService(email EmailService) *ContactService {
	if email == nil {
		email = &NoopEmailService{}
	}
	return &ContactService{email: email}
}

// Submit проверяет и отправляет сообщение
func (s *ContactService) Submit(ctx context.Context, msg dto.ContactRequest) error {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Message = strings.TrimSpace(msg.Message)
	if msg.Name == "" || msg.Email == "" || msg.Message == "" {
		return fmt.Errorf("%w: name, email and message are required", apperrors.ErrValidation)
	}
	if strings.ContainsAny(msg.Name, "\r\n") || strings.ContainsAny(msg.Email, "\r\n") {
		return fmt.Errorf("%w: invalid characters in name or email", apperrors.ErrValidation)
	}

	if err := s.email.SendContactMessage(ctx, msg); err != nil {
		log.Printf("[ContactService.Submit] Ошибка отправки сообщения от %s: %v", msg.Email, err)
		return err
	}
	log.Printf("[ContactService.Submit] Сообщение от %s отправлено", msg.Email)
	return nil
}
