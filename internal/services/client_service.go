package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/email"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/events"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/metrics"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/models"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/repository"
)

type InviteSettings struct {
	From string
	// Link turns an invite token into the signup URL sent to the client.
	Link func(token string) string
}

type ClientService struct {
	db            *pgxpool.Pool
	relationships *repository.ClientRelationshipRepository
	users         *repository.UserRepository
	mailer        email.Sender
	invites       InviteSettings
	publisher     events.Publisher
}

func NewClientService(
	db *pgxpool.Pool,
	relationships *repository.ClientRelationshipRepository,
	users *repository.UserRepository,
	mailer email.Sender,
	invites InviteSettings,
	publisher events.Publisher,
) *ClientService {
	if mailer == nil {
		mailer = email.LogSender{}
	}
	return &ClientService{
		db:            db,
		relationships: relationships,
		users:         users,
		mailer:        mailer,
		invites:       invites,
		publisher:     publisher,
	}
}

type InviteClientInput struct {
	Email   string
	Name    string
	Message *string
}

func (s *ClientService) ListClients(
	ctx context.Context,
	coachID int64,
	status string,
	page int,
	limit int,
) ([]models.ClientListItem, int, error) {
	if status == "" {
		status = models.RelationshipActive
	}
	if !models.ValidRelationshipStatus(status) {
		return nil, 0, invalidInput("status must be one of active, pending, inactive")
	}
	return s.relationships.ListClients(ctx, repository.ClientListFilter{
		CoachID: coachID,
		Status:  status,
		Limit:   limit,
		Offset:  (page - 1) * limit,
	})
}

// InviteClient links an existing client account, or a new inactive
// placeholder for an unknown email, to the coach as a pending relationship
// and mails the signup link.
func (s *ClientService) InviteClient(
	ctx context.Context,
	coachID int64,
	input InviteClientInput,
) (*models.Invitation, error) {
	emailAddr := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)
	if emailAddr == "" || name == "" {
		return nil, invalidInput("email and name are required")
	}
	if input.Message != nil && strings.TrimSpace(*input.Message) == "" {
		input.Message = nil
	}

	coach, err := s.users.GetByID(ctx, coachID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var invitation models.Invitation
	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		txUsers := repository.NewUserRepository(tx)
		txRelationships := repository.NewClientRelationshipRepository(tx)

		client, err := txUsers.GetByEmail(ctx, emailAddr)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			client = &models.User{
				Email:    emailAddr,
				Name:     name,
				Role:     models.RoleClient,
				IsActive: false,
			}
			if err := txUsers.CreateUser(ctx, client); err != nil {
				return err
			}
		case err != nil:
			return err
		}
		if client.ID == coachID {
			return invalidInput("you cannot invite yourself")
		}
		if client.Role == models.RoleCoach {
			return invalidInput("this email belongs to a coach account")
		}

		if _, err := txRelationships.GetByCoachAndClient(ctx, coachID, client.ID); err == nil {
			return ErrAlreadyInvited
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		rel, err := txRelationships.Create(ctx, repository.CreateRelationshipInput{
			CoachID:     coachID,
			ClientID:    client.ID,
			Status:      models.RelationshipPending,
			InviteToken: uuid.NewString(),
			Message:     input.Message,
		})
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrAlreadyInvited
			}
			return err
		}

		invitation = models.Invitation{Relationship: *rel, Client: *client}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.invites.Link != nil {
		invitation.Link = s.invites.Link(invitation.Relationship.InviteToken)
	}

	s.sendInvitation(ctx, coach, &invitation)
	events.Emit(ctx, s.publisher, events.NewRelationshipEvent(events.ClientInvited, &invitation.Relationship))
	return &invitation, nil
}

// sendInvitation never fails the invite; the relationship already exists and
// the coach can resend.
func (s *ClientService) sendInvitation(ctx context.Context, coach *models.User, invitation *models.Invitation) {
	message := ""
	if invitation.Relationship.Message != nil {
		message = *invitation.Relationship.Message
	}
	html, err := email.RenderInvitation(email.InvitationData{
		ClientName: invitation.Client.Name,
		CoachName:  coach.Name,
		Message:    message,
		Link:       invitation.Link,
	})
	if err != nil {
		slog.ErrorContext(ctx, "render invitation email", "error", err)
		metrics.InvitationsSentTotal.WithLabelValues("failed").Inc()
		return
	}

	_, err = s.mailer.Send(ctx, email.SendRequest{
		From:    s.invites.From,
		To:      []string{invitation.Client.Email},
		Subject: coach.Name + " invited you to Kahunas",
		HTML:    html,
		ReplyTo: coach.Email,
	})
	if err != nil {
		slog.ErrorContext(ctx, "send invitation email",
			"error", err,
			"relationship_id", invitation.Relationship.ID,
		)
		metrics.InvitationsSentTotal.WithLabelValues("failed").Inc()
		return
	}
	metrics.InvitationsSentTotal.WithLabelValues("sent").Inc()
}

// UpdateClientStatus lets a coach pause or resume a client.
func (s *ClientService) UpdateClientStatus(
	ctx context.Context,
	coachID int64,
	clientID int64,
	status string,
) (*models.ClientRelationship, error) {
	if !models.ValidRelationshipStatus(status) {
		return nil, invalidInput("status must be one of active, pending, inactive")
	}

	rel, err := s.relationships.GetByCoachAndClient(ctx, coachID, clientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if rel.Status == status {
		return rel, nil
	}
	if !coachCanMoveRelationship(rel.Status, status) {
		return nil, ErrInvalidStateTransition
	}

	updated, err := s.relationships.UpdateStatusIfCurrent(ctx, rel.ID, rel.Status, status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConflict
		}
		return nil, err
	}
	events.Emit(ctx, s.publisher, events.NewRelationshipEvent(events.ClientStatusChange, updated))
	return updated, nil
}

// AcceptInvitation activates a pending relationship for the invited client.
func (s *ClientService) AcceptInvitation(
	ctx context.Context,
	clientID int64,
	token string,
) (*models.ClientRelationship, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, ErrNotFound
	}
	rel, err := s.relationships.GetByInviteToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if rel.ClientID != clientID {
		return nil, ErrForbidden
	}
	switch rel.Status {
	case models.RelationshipActive:
		return rel, nil
	case models.RelationshipInactive:
		return nil, ErrInvalidStateTransition
	}

	updated, err := s.relationships.UpdateStatusIfCurrent(ctx, rel.ID, models.RelationshipPending, models.RelationshipActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConflict
		}
		return nil, err
	}
	events.Emit(ctx, s.publisher, events.NewRelationshipEvent(events.ClientStatusChange, updated))
	return updated, nil
}

func coachCanMoveRelationship(from, to string) bool {
	switch from {
	case models.RelationshipActive:
		return to == models.RelationshipInactive
	case models.RelationshipInactive:
		return to == models.RelationshipActive
	case models.RelationshipPending:
		return to == models.RelationshipInactive
	}
	return false
}
