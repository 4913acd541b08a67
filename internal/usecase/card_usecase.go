package usecase

import (
	"context"
	"time"

	"theralink/internal/converter"
	"theralink/internal/delivery/dto"
	"theralink/internal/domain/entity"
	"theralink/internal/domain/repository"
	"theralink/internal/service"
	"theralink/pkg/card"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CardUsecase interface {
	AddCard(ctx context.Context, userID uuid.UUID, req *dto.AddCardRequest) (*dto.CardResponse, error)
	ListCards(ctx context.Context, userID uuid.UUID) ([]dto.CardResponse, error)
	DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error
}

type cardUsecase struct {
	transactor   repository.Transactor
	log          *logrus.Logger
	cardRepo     repository.PaymentCardRepository
	auditService service.AuditService
	now          func() time.Time
}

func NewCardUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	cardRepo repository.PaymentCardRepository,
	auditService service.AuditService,
) CardUsecase {
	return &cardUsecase{
		transactor:   transactor,
		log:          log,
		cardRepo:     cardRepo,
		auditService: auditService,
		now:          time.Now,
	}
}

// AddCard keeps the brand and last four digits. The number and CVV are dropped here.
func (u *cardUsecase) AddCard(ctx context.Context, userID uuid.UUID, req *dto.AddCardRequest) (*dto.CardResponse, error) {
	digits, err := card.Normalize(req.CardNumber)
	if err != nil {
		return nil, ErrInvalidCard
	}

	now := u.now().UTC()
	if req.ExpiryYear < now.Year() || (req.ExpiryYear == now.Year() && req.ExpiryMonth < int(now.Month())) {
		return nil, ErrCardExpired
	}

	paymentCard := &entity.PaymentCard{
		ID:          uuid.New(),
		UserID:      userID,
		Last4:       card.Last4(digits),
		CardType:    card.Brand(digits),
		HolderName:  req.HolderName,
		ExpiryMonth: req.ExpiryMonth,
		ExpiryYear:  req.ExpiryYear,
	}

	if err := u.cardRepo.Create(u.transactor.DB(ctx), paymentCard); err != nil {
		u.log.Warnf("Failed to save card: %+v", err)
		return nil, err
	}

	u.auditService.LogCreate(ctx, nil, &userID, entity.AuditActionCardAdd, "payment_card", paymentCard.ID.String(), map[string]interface{}{
		"last4":     paymentCard.Last4,
		"card_type": paymentCard.CardType,
	})

	return converter.CardToResponse(paymentCard), nil
}

func (u *cardUsecase) ListCards(ctx context.Context, userID uuid.UUID) ([]dto.CardResponse, error) {
	cards, err := u.cardRepo.FindByUserID(u.transactor.DB(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to list cards: %+v", err)
		return nil, err
	}
	return converter.CardsToResponses(cards), nil
}

func (u *cardUsecase) DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error {
	affected, err := u.cardRepo.Delete(u.transactor.DB(ctx), cardID, userID)
	if err != nil {
		u.log.Warnf("Failed to delete card: %+v", err)
		return err
	}
	if affected == 0 {
		return ErrCardNotFound
	}

	u.auditService.LogDelete(ctx, nil, &userID, entity.AuditActionCardDelete, "payment_card", cardID.String(), nil)
	return nil
}
