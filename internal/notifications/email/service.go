package email

import (
	"context"
	"log/slog"

	"seasidebeacon/internal/types"
)

// Provider abstracts the delivery transport so the service can be tested
// without a live Brevo account. Satisfied by external.BrevoClient.
type Provider interface {
	Send(ctx context.Context, input types.SendInput) (string, error)
}

// Service renders and delivers subscriber email.
type Service struct {
	provider Provider
	renderer *Renderer
	logger   *slog.Logger
}

// NewService creates an email Service.
func NewService(provider Provider, renderer *Renderer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		provider: provider,
		renderer: renderer,
		logger:   logger,
	}
}

// SendWelcome delivers the subscription welcome email. Callers treat
// failures as non-fatal; a subscription stands even if the welcome mail
// never arrives.
func (s *Service) SendWelcome(ctx context.Context, toEmail string, beachName string) error {
	rendered, err := s.renderer.RenderWelcome(beachName)
	if err != nil {
		return err
	}

	msgID, err := s.provider.Send(ctx, types.SendInput{
		ToAddress: toEmail,
		Subject:   rendered.Subject,
		BodyHTML:  rendered.BodyHTML,
		BodyText:  rendered.BodyText,
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "welcome email sent",
		slog.String("beach", beachName),
		slog.String("provider_msg_id", msgID),
	)
	return nil
}

// SendDaily delivers the morning digest for one subscriber.
func (s *Service) SendDaily(ctx context.Context, sub types.Subscriber, result *types.PredictionResult, insight *types.Insight) error {
	rendered, err := s.renderer.RenderDaily(result, insight)
	if err != nil {
		return err
	}

	msgID, err := s.provider.Send(ctx, types.SendInput{
		ToAddress: sub.Email,
		Subject:   rendered.Subject,
		BodyHTML:  rendered.BodyHTML,
		BodyText:  rendered.BodyText,
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "daily digest sent",
		slog.String("subscriber_id", sub.ID),
		slog.String("beach", sub.PreferredBeach),
		slog.String("provider_msg_id", msgID),
	)
	return nil
}
