package usecase

import (
	"context"
	"fmt"
	"time"

	"theralink/config"
	"theralink/internal/delivery/dto"
	"theralink/internal/domain/entity"
	"theralink/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var defaultToolbarButtons = []string{
	"microphone", "camera", "desktop", "chat", "raisehand", "tileview", "fullscreen", "hangup",
}

type VideoUsecase interface {
	GetOrCreateSession(ctx context.Context, userID, appointmentID uuid.UUID) (*dto.VideoSessionResponse, error)
}

type videoUsecase struct {
	transactor      repository.Transactor
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	videoRepo       repository.VideoSessionRepository
	cfg             config.VideoConfig
	now             func() time.Time
}

func NewVideoUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	videoRepo repository.VideoSessionRepository,
	cfg config.VideoConfig,
) VideoUsecase {
	return &videoUsecase{
		transactor:      transactor,
		log:             log,
		appointmentRepo: appointmentRepo,
		videoRepo:       videoRepo,
		cfg:             cfg,
		now:             time.Now,
	}
}

func (u *videoUsecase) GetOrCreateSession(ctx context.Context, userID, appointmentID uuid.UUID) (*dto.VideoSessionResponse, error) {
	db := u.transactor.DB(ctx)

	appointment, err := u.appointmentRepo.FindByID(db, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if !appointment.IsParticipant(userID) {
		return nil, ErrNotParticipant
	}
	if appointment.Status == entity.AppointmentCancelled {
		return nil, ErrAppointmentCancelled
	}

	session, err := u.videoRepo.FindByAppointmentID(db, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find video session: %+v", err)
		return nil, err
	}

	if session == nil {
		session = &entity.VideoSession{
			ID:            uuid.New(),
			AppointmentID: appointmentID,
			RoomName:      fmt.Sprintf("%s-%d", appointmentID, u.now().UnixMilli()),
			Provider:      entity.VideoProviderJitsi,
		}
		if err := u.videoRepo.Create(db, session); err != nil {
			if !isDuplicateKeyError(err, "appointment") {
				u.log.Warnf("Failed to create video session: %+v", err)
				return nil, err
			}
			// Lost the race to the other participant; use their room
			session, err = u.videoRepo.FindByAppointmentID(db, appointmentID)
			if err != nil {
				u.log.Warnf("Failed to reload video session: %+v", err)
				return nil, err
			}
			if session == nil {
				return nil, ErrAppointmentNotFound
			}
		}
	}

	participant := appointment.Client
	if userID == appointment.TherapistID {
		participant = appointment.Therapist
	}

	return &dto.VideoSessionResponse{
		SessionID:     session.ID,
		AppointmentID: appointmentID,
		Provider:      session.Provider,
		Domain:        u.cfg.Domain,
		ScriptURL:     u.cfg.ScriptURL,
		Options: dto.VideoOptions{
			RoomName:            session.RoomName,
			DisplayName:         participant.FullName,
			Email:               participant.Email,
			StartWithAudioMuted: false,
			StartWithVideoMuted: false,
			ToolbarButtons:      defaultToolbarButtons,
		},
		Commands: dto.VideoCommands{
			ToggleAudio:       "toggleAudio",
			ToggleVideo:       "toggleVideo",
			Hangup:            "hangup",
			ToggleShareScreen: "toggleShareScreen",
		},
		Events: dto.VideoEvents{
			Joined:       "videoConferenceJoined",
			ReadyToClose: "readyToClose",
		},
	}, nil
}
