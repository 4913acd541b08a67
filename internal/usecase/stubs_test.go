package usecase

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"theralink/internal/domain/entity"
	"theralink/internal/infrastructure/gateway"
	"theralink/internal/infrastructure/queue"
	"theralink/internal/service"
	"theralink/pkg/jwt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var errStub = errors.New("stub failure")

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// memStore is an in-memory database. The stub transactor snapshots it on
// entry and restores the snapshot when the callback fails.
type memStore struct {
	mu            sync.Mutex
	profiles      map[uuid.UUID]entity.Profile
	therapists    map[uuid.UUID]entity.TherapistProfile
	bookings      map[uuid.UUID]entity.BookingRequest
	intents       map[uuid.UUID]entity.PaymentIntent
	transactions  map[string]entity.Transaction
	appointments  map[uuid.UUID]entity.Appointment
	wallets       map[uuid.UUID]entity.Wallet
	notifications map[uuid.UUID]entity.Notification
	videos        map[uuid.UUID]entity.VideoSession
	cards         map[uuid.UUID]entity.PaymentCard
	audits        []entity.AuditLog
	debitCalls    int
}

func newMemStore() *memStore {
	return &memStore{
		profiles:      map[uuid.UUID]entity.Profile{},
		therapists:    map[uuid.UUID]entity.TherapistProfile{},
		bookings:      map[uuid.UUID]entity.BookingRequest{},
		intents:       map[uuid.UUID]entity.PaymentIntent{},
		transactions:  map[string]entity.Transaction{},
		appointments:  map[uuid.UUID]entity.Appointment{},
		wallets:       map[uuid.UUID]entity.Wallet{},
		notifications: map[uuid.UUID]entity.Notification{},
		videos:        map[uuid.UUID]entity.VideoSession{},
		cards:         map[uuid.UUID]entity.PaymentCard{},
	}
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (s *memStore) snapshot() *memStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &memStore{
		profiles:      copyMap(s.profiles),
		therapists:    copyMap(s.therapists),
		bookings:      copyMap(s.bookings),
		intents:       copyMap(s.intents),
		transactions:  copyMap(s.transactions),
		appointments:  copyMap(s.appointments),
		wallets:       copyMap(s.wallets),
		notifications: copyMap(s.notifications),
		videos:        copyMap(s.videos),
		cards:         copyMap(s.cards),
		audits:        append([]entity.AuditLog(nil), s.audits...),
		debitCalls:    s.debitCalls,
	}
}

func (s *memStore) restore(snap *memStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = snap.profiles
	s.therapists = snap.therapists
	s.bookings = snap.bookings
	s.intents = snap.intents
	s.transactions = snap.transactions
	s.appointments = snap.appointments
	s.wallets = snap.wallets
	s.notifications = snap.notifications
	s.videos = snap.videos
	s.cards = snap.cards
	s.audits = snap.audits
}

func (s *memStore) notificationsFor(userID uuid.UUID) []entity.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (s *memStore) balance(userID uuid.UUID) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallets[userID].Balance
}

func (s *memStore) addProfile(roleID int, name string) entity.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := entity.Profile{
		ID:       uuid.New(),
		RoleID:   roleID,
		Email:    strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		FullName: name,
		IsActive: true,
		Role:     entity.Role{ID: roleID, RoleName: entity.RoleNameByID(roleID)},
	}
	s.profiles[p.ID] = p
	return p
}

func (s *memStore) addTherapist(name string, rate string, community bool) entity.TherapistProfile {
	roleID := entity.RoleIDTherapist
	if community {
		roleID = entity.RoleIDFriend
	}
	p := s.addProfile(roleID, name)

	s.mu.Lock()
	defer s.mu.Unlock()
	t := entity.TherapistProfile{
		UserID:      p.ID,
		HourlyRate:  decimal.RequireFromString(rate),
		IsCommunity: community,
		Profile:     p,
	}
	s.therapists[p.ID] = t
	return t
}

func (s *memStore) setBalance(userID uuid.UUID, amount string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[userID] = entity.Wallet{UserID: userID, Balance: decimal.RequireFromString(amount), Currency: "NGN"}
}

func (s *memStore) addAppointment(a entity.Appointment) entity.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.Client = s.profiles[a.ClientID]
	a.Therapist = s.profiles[a.TherapistID]
	s.appointments[a.ID] = a
	return a
}

// stubTransactor

type stubTransactor struct {
	store *memStore
}

func (t *stubTransactor) DB(ctx context.Context) *gorm.DB {
	return nil
}

func (t *stubTransactor) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	snap := t.store.snapshot()
	if err := fn(nil); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

// Repositories

type memProfileRepo struct{ s *memStore }

func (r *memProfileRepo) Create(db *gorm.DB, profile *entity.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.profiles {
		if p.Email == profile.Email {
			return &pgconn.PgError{Code: "23505", ConstraintName: "profiles_email_key"}
		}
	}
	r.s.profiles[profile.ID] = *profile
	return nil
}

func (r *memProfileRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *memProfileRepo) FindByEmail(db *gorm.DB, email string) (*entity.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.profiles {
		if strings.EqualFold(p.Email, email) {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *memProfileRepo) Update(db *gorm.DB, profile *entity.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.profiles[profile.ID] = *profile
	return nil
}

func (r *memProfileRepo) UpdateImageURL(db *gorm.DB, id uuid.UUID, url string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return 0, nil
	}
	p.ProfileImageURL = url
	r.s.profiles[id] = p
	return 1, nil
}

func (r *memProfileRepo) FindAll(db *gorm.DB, filter entity.UserFilter) ([]entity.Profile, int64, error) {
	ids, _ := r.FindIDsAfter(db, filter.RoleID, uuid.Nil, len(r.s.profiles))
	var out []entity.Profile
	for _, id := range ids {
		p, _ := r.FindByID(db, id)
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *memProfileRepo) FindIDsAfter(db *gorm.DB, roleID int, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uuid.UUID
	for _, p := range r.s.profiles {
		if !p.IsActive || (roleID != 0 && p.RoleID != roleID) {
			continue
		}
		if strings.Compare(p.ID.String(), after.String()) > 0 {
			ids = append(ids, p.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (r *memProfileRepo) CountByRole(db *gorm.DB, roleID int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, p := range r.s.profiles {
		if p.RoleID == roleID {
			n++
		}
	}
	return n, nil
}

type memRoleRepo struct{}

func (memRoleRepo) FindByName(db *gorm.DB, name string) (*entity.Role, error) {
	id := entity.RoleIDByName(name)
	if id == 0 {
		return nil, nil
	}
	return &entity.Role{ID: id, RoleName: name}, nil
}

type memTherapistRepo struct{ s *memStore }

func (r *memTherapistRepo) Create(db *gorm.DB, profile *entity.TherapistProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.therapists[profile.UserID] = *profile
	return nil
}

func (r *memTherapistRepo) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.TherapistProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.therapists[userID]
	if !ok {
		return nil, nil
	}
	t.Profile = r.s.profiles[userID]
	return &t, nil
}

func (r *memTherapistRepo) FindAllActive(db *gorm.DB, filter *entity.TherapistFilter) ([]entity.TherapistProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.TherapistProfile
	for id, t := range r.s.therapists {
		t.Profile = r.s.profiles[id]
		if !t.Profile.IsActive {
			continue
		}
		if filter != nil && filter.Community != nil && *filter.Community != t.IsCommunity {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *memTherapistRepo) Update(db *gorm.DB, profile *entity.TherapistProfile) error {
	return r.Create(db, profile)
}

func (r *memTherapistRepo) UpdateAvailability(db *gorm.DB, userID uuid.UUID, availability []entity.AvailabilityDay) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.therapists[userID]
	if !ok {
		return 0, nil
	}
	t.Availability = availability
	r.s.therapists[userID] = t
	return 1, nil
}

type memBookingRepo struct{ s *memStore }

func (r *memBookingRepo) Create(db *gorm.DB, booking *entity.BookingRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.bookings[booking.ID] = *booking
	return nil
}

func (r *memBookingRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.BookingRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, nil
	}
	b.Client = r.s.profiles[b.ClientID]
	b.Therapist = r.s.profiles[b.TherapistID]
	return &b, nil
}

func (r *memBookingRepo) find(match func(entity.BookingRequest) bool, filter entity.BookingFilter) []entity.BookingRequest {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.BookingRequest
	for _, b := range r.s.bookings {
		if match(b) && (filter.Status == "" || b.Status == filter.Status) {
			out = append(out, b)
		}
	}
	return out
}

func (r *memBookingRepo) FindByClientID(db *gorm.DB, clientID uuid.UUID, filter entity.BookingFilter) ([]entity.BookingRequest, error) {
	return r.find(func(b entity.BookingRequest) bool { return b.ClientID == clientID }, filter), nil
}

func (r *memBookingRepo) FindByTherapistID(db *gorm.DB, therapistID uuid.UUID, filter entity.BookingFilter) ([]entity.BookingRequest, error) {
	return r.find(func(b entity.BookingRequest) bool { return b.TherapistID == therapistID }, filter), nil
}

func (r *memBookingRepo) TransitionStatus(db *gorm.DB, id uuid.UUID, from, to entity.BookingStatus, fields map[string]interface{}) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok || b.Status != from {
		return 0, nil
	}
	b.Status = to
	if v, ok := fields["appointment_id"].(uuid.UUID); ok {
		b.AppointmentID = &v
	}
	if v, ok := fields["rejection_reason"].(string); ok {
		b.RejectionReason = v
	}
	r.s.bookings[id] = b
	return 1, nil
}

func (r *memBookingRepo) CountByStatus(db *gorm.DB, status entity.BookingStatus) (int64, error) {
	return int64(len(r.find(func(entity.BookingRequest) bool { return true }, entity.BookingFilter{Status: status}))), nil
}

type memIntentRepo struct{ s *memStore }

func (r *memIntentRepo) Create(db *gorm.DB, intent *entity.PaymentIntent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.intents[intent.BookingRequestID] = *intent
	return nil
}

func (r *memIntentRepo) FindByBookingRequestID(db *gorm.DB, bookingRequestID uuid.UUID) (*entity.PaymentIntent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.intents[bookingRequestID]
	if !ok {
		return nil, nil
	}
	return &i, nil
}

func (r *memIntentRepo) TransitionStatus(db *gorm.DB, bookingRequestID uuid.UUID, from, to entity.PaymentIntentStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.intents[bookingRequestID]
	if !ok || i.Status != from {
		return 0, nil
	}
	i.Status = to
	r.s.intents[bookingRequestID] = i
	return 1, nil
}

type memTransactionRepo struct{ s *memStore }

func (r *memTransactionRepo) Create(db *gorm.DB, txn *entity.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.transactions[txn.Reference]; exists {
		return errStub
	}
	r.s.transactions[txn.Reference] = *txn
	return nil
}

func (r *memTransactionRepo) FindByReference(db *gorm.DB, reference string) (*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transactions[reference]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *memTransactionRepo) FindByUserID(db *gorm.DB, userID uuid.UUID, limit int) ([]entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Transaction
	for _, t := range r.s.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTransactionRepo) TransitionStatus(db *gorm.DB, reference string, from, to entity.TransactionStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transactions[reference]
	if !ok || t.Status != from {
		return 0, nil
	}
	t.Status = to
	r.s.transactions[reference] = t
	return 1, nil
}

func (r *memTransactionRepo) SumCompleted(db *gorm.DB, txnType entity.TransactionType) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := decimal.Zero
	for _, t := range r.s.transactions {
		if t.TransactionType == txnType && t.Status == entity.TransactionCompleted {
			total = total.Add(t.Amount)
		}
	}
	return total, nil
}

type memAppointmentRepo struct{ s *memStore }

func (r *memAppointmentRepo) Create(db *gorm.DB, appointment *entity.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.appointments[appointment.ID] = *appointment
	return nil
}

func (r *memAppointmentRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, nil
	}
	a.Client = r.s.profiles[a.ClientID]
	a.Therapist = r.s.profiles[a.TherapistID]
	return &a, nil
}

func (r *memAppointmentRepo) FindByParticipant(db *gorm.DB, userID uuid.UUID, filter entity.AppointmentFilter) ([]entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.s.appointments {
		if a.IsParticipant(userID) && (filter.Status == "" || a.Status == filter.Status) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAppointmentRepo) TransitionStatus(db *gorm.DB, id uuid.UUID, from, to entity.AppointmentStatus, fields map[string]interface{}) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok || a.Status != from {
		return 0, nil
	}
	a.Status = to
	if v, ok := fields["payment_id"].(uuid.UUID); ok {
		a.PaymentID = &v
	}
	r.s.appointments[id] = a
	return 1, nil
}

func (r *memAppointmentRepo) CountByStatus(db *gorm.DB, status entity.AppointmentStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, a := range r.s.appointments {
		if a.Status == status {
			n++
		}
	}
	return n, nil
}

type memWalletRepo struct{ s *memStore }

func (r *memWalletRepo) FindOrCreate(db *gorm.DB, userID uuid.UUID, currency string) (*entity.Wallet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.wallets[userID]
	if !ok {
		w = entity.Wallet{UserID: userID, Balance: decimal.Zero, Currency: currency}
		r.s.wallets[userID] = w
	}
	return &w, nil
}

func (r *memWalletRepo) Credit(db *gorm.DB, userID uuid.UUID, amount decimal.Decimal, currency string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.wallets[userID]
	if !ok {
		w = entity.Wallet{UserID: userID, Balance: decimal.Zero, Currency: currency}
	}
	w.Balance = w.Balance.Add(amount)
	r.s.wallets[userID] = w
	return nil
}

func (r *memWalletRepo) Debit(db *gorm.DB, userID uuid.UUID, amount decimal.Decimal) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.debitCalls++
	w, ok := r.s.wallets[userID]
	if !ok || w.Balance.LessThan(amount) {
		return 0, nil
	}
	w.Balance = w.Balance.Sub(amount)
	r.s.wallets[userID] = w
	return 1, nil
}

type memNotificationRepo struct {
	s          *memStore
	failCreate error
	batchCalls int
	batchSizes []int
}

func (r *memNotificationRepo) Create(db *gorm.DB, notification *entity.Notification) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	r.s.notifications[notification.ID] = *notification
	return nil
}

func (r *memNotificationRepo) CreateBatch(db *gorm.DB, notifications []entity.Notification, batchSize int) error {
	r.batchCalls++
	r.batchSizes = append(r.batchSizes, len(notifications))
	for i := range notifications {
		if err := r.Create(db, &notifications[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *memNotificationRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

func (r *memNotificationRepo) FindByUserID(db *gorm.DB, userID uuid.UUID, unreadOnly bool, limit int) ([]entity.Notification, error) {
	var out []entity.Notification
	for _, n := range r.s.notificationsFor(userID) {
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *memNotificationRepo) CountUnread(db *gorm.DB, userID uuid.UUID) (int64, error) {
	var n int64
	for _, notification := range r.s.notificationsFor(userID) {
		if !notification.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *memNotificationRepo) MarkRead(db *gorm.DB, id, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID || n.IsRead {
		return 0, nil
	}
	n.IsRead = true
	r.s.notifications[id] = n
	return 1, nil
}

func (r *memNotificationRepo) MarkAllRead(db *gorm.DB, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var affected int64
	for id, n := range r.s.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			r.s.notifications[id] = n
			affected++
		}
	}
	return affected, nil
}

type memVideoRepo struct {
	s *memStore
	// raceWinner is inserted right before the next Create to simulate a concurrent writer
	raceWinner *entity.VideoSession
}

func (r *memVideoRepo) Create(db *gorm.DB, session *entity.VideoSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.raceWinner != nil {
		r.s.videos[r.raceWinner.AppointmentID] = *r.raceWinner
		r.raceWinner = nil
	}
	if _, exists := r.s.videos[session.AppointmentID]; exists {
		return &pgconn.PgError{Code: "23505", ConstraintName: "idx_video_sessions_appointment_id"}
	}
	r.s.videos[session.AppointmentID] = *session
	return nil
}

func (r *memVideoRepo) FindByAppointmentID(db *gorm.DB, appointmentID uuid.UUID) (*entity.VideoSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.videos[appointmentID]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

type memCardRepo struct{ s *memStore }

func (r *memCardRepo) Create(db *gorm.DB, card *entity.PaymentCard) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.cards[card.ID] = *card
	return nil
}

func (r *memCardRepo) FindByUserID(db *gorm.DB, userID uuid.UUID) ([]entity.PaymentCard, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.PaymentCard
	for _, c := range r.s.cards {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCardRepo) Delete(db *gorm.DB, id, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.cards[id]
	if !ok || c.UserID != userID {
		return 0, nil
	}
	delete(r.s.cards, id)
	return 1, nil
}

type memAuditRepo struct{ s *memStore }

func (r *memAuditRepo) Create(db *gorm.DB, log *entity.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	log.ID = int64(len(r.s.audits) + 1)
	r.s.audits = append(r.s.audits, *log)
	return nil
}

func (r *memAuditRepo) FindAll(db *gorm.DB, limit int) ([]entity.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]entity.AuditLog(nil), r.s.audits...), nil
}

func (r *memAuditRepo) FindByID(db *gorm.DB, id int64) (*entity.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.audits {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, nil
}

// Collaborators

type stubHub struct {
	mu     sync.Mutex
	events map[uuid.UUID][]service.RealtimeEvent
}

func newStubHub() *stubHub {
	return &stubHub{events: map[uuid.UUID][]service.RealtimeEvent{}}
}

func (h *stubHub) Publish(ctx context.Context, userID uuid.UUID, event service.RealtimeEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events[userID] = append(h.events[userID], event)
	return nil
}

func (h *stubHub) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan []byte, func(), error) {
	ch := make(chan []byte)
	return ch, func() {}, nil
}

func (h *stubHub) count(userID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events[userID])
}

type stubGateway struct {
	initializeErr error
	verifyResult  *gateway.VerifyResult
	verifyErr     error
	transferErr   error
	onTransfer    func()
	verifyCalls   int
	initRequests  []gateway.InitializeRequest
}

func (g *stubGateway) Name() string { return "stub" }

func (g *stubGateway) Initialize(ctx context.Context, req gateway.InitializeRequest) (*gateway.InitializeResult, error) {
	g.initRequests = append(g.initRequests, req)
	if g.initializeErr != nil {
		return nil, g.initializeErr
	}
	return &gateway.InitializeResult{
		AuthorizationURL: "https://checkout.example.com/" + req.Reference,
		Reference:        req.Reference,
	}, nil
}

func (g *stubGateway) Verify(ctx context.Context, reference string) (*gateway.VerifyResult, error) {
	g.verifyCalls++
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	result := *g.verifyResult
	result.Reference = reference
	return &result, nil
}

func (g *stubGateway) Transfer(ctx context.Context, req gateway.TransferRequest) (*gateway.TransferResult, error) {
	if g.onTransfer != nil {
		g.onTransfer()
	}
	if g.transferErr != nil {
		return nil, g.transferErr
	}
	return &gateway.TransferResult{Reference: req.Reference, Status: gateway.StatusSuccess}, nil
}

func (g *stubGateway) ParseWebhook(payload []byte, header http.Header) (*gateway.WebhookEvent, error) {
	if header.Get("X-Test-Signature") != "ok" {
		return nil, gateway.ErrInvalidSignature
	}
	return &gateway.WebhookEvent{Type: "charge.success", Reference: string(payload), Status: gateway.StatusSuccess}, nil
}

type stubEnqueuer struct {
	broadcasts []queue.BroadcastPayload
	reminders  map[uuid.UUID]time.Time
}

func newStubEnqueuer() *stubEnqueuer {
	return &stubEnqueuer{reminders: map[uuid.UUID]time.Time{}}
}

func (e *stubEnqueuer) EnqueueBroadcast(ctx context.Context, payload queue.BroadcastPayload) (string, error) {
	e.broadcasts = append(e.broadcasts, payload)
	return "task-1", nil
}

func (e *stubEnqueuer) EnqueueReminder(ctx context.Context, payload queue.ReminderPayload, fireAt time.Time) (string, error) {
	e.reminders[payload.AppointmentID] = fireAt
	return "reminder:" + payload.AppointmentID.String(), nil
}

type stubPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *stubPublisher) Publish(ctx context.Context, topic, key, eventType string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func (p *stubPublisher) Close() error { return nil }

type stubStorage struct {
	url string
	err error
}

func (s *stubStorage) UploadAvatar(ctx context.Context, userID string, file io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

type stubTokenStore struct {
	mu     sync.Mutex
	tokens map[string]bool
}

func newStubTokenStore() *stubTokenStore {
	return &stubTokenStore{tokens: map[string]bool{}}
}

func tokenStoreKey(userID uuid.UUID, tokenType jwt.TokenType, tokenID string) string {
	return string(tokenType) + ":" + userID.String() + ":" + tokenID
}

func (s *stubTokenStore) Store(ctx context.Context, userID uuid.UUID, tokenType jwt.TokenType, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenStoreKey(userID, tokenType, tokenID)] = true
	return nil
}

func (s *stubTokenStore) Exists(ctx context.Context, userID uuid.UUID, tokenType jwt.TokenType, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[tokenStoreKey(userID, tokenType, tokenID)], nil
}

func (s *stubTokenStore) Revoke(ctx context.Context, userID uuid.UUID, tokenType jwt.TokenType, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, tokenStoreKey(userID, tokenType, tokenID))
	return nil
}

func (s *stubTokenStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.tokens {
		if strings.Contains(k, userID.String()) {
			delete(s.tokens, k)
		}
	}
	return nil
}

// testEnv wires every usecase against one memStore.
type testEnv struct {
	store            *memStore
	transactor       *stubTransactor
	log              *logrus.Logger
	hub              *stubHub
	gateway          *stubGateway
	enqueuer         *stubEnqueuer
	publisher        *stubPublisher
	notificationRepo *memNotificationRepo
	videoRepo        *memVideoRepo
	notifier         service.Notifier
	audit            service.AuditService
}

func newTestEnv() *testEnv {
	store := newMemStore()
	transactor := &stubTransactor{store: store}
	log := newTestLogger()
	hub := newStubHub()
	notificationRepo := &memNotificationRepo{s: store}

	return &testEnv{
		store:            store,
		transactor:       transactor,
		log:              log,
		hub:              hub,
		gateway:          &stubGateway{verifyResult: &gateway.VerifyResult{Status: gateway.StatusSuccess}},
		enqueuer:         newStubEnqueuer(),
		publisher:        &stubPublisher{},
		notificationRepo: notificationRepo,
		videoRepo:        &memVideoRepo{s: store},
		notifier:         service.NewNotifier(transactor, log, notificationRepo, hub),
		audit:            service.NewAuditService(transactor, log, &memAuditRepo{s: store}),
	}
}

func (e *testEnv) bookingUsecase() *bookingUsecase {
	return NewBookingUsecase(
		e.transactor, e.log,
		&memBookingRepo{s: e.store}, &memIntentRepo{s: e.store}, &memAppointmentRepo{s: e.store}, &memTherapistRepo{s: e.store},
		e.notifier, e.publisher, e.enqueuer, e.audit, "NGN", 15*time.Minute,
	).(*bookingUsecase)
}

func (e *testEnv) paymentUsecase() *paymentUsecase {
	return NewPaymentUsecase(
		e.transactor, e.log,
		&memAppointmentRepo{s: e.store}, &memWalletRepo{s: e.store}, &memTransactionRepo{s: e.store}, &memIntentRepo{s: e.store},
		e.gateway, e.notifier, e.publisher, e.enqueuer, e.audit, "NGN", "https://app.example.com/payments/verify", 15*time.Minute,
	).(*paymentUsecase)
}

func (e *testEnv) walletUsecase() WalletUsecase {
	return NewWalletUsecase(
		e.transactor, e.log,
		&memWalletRepo{s: e.store}, &memTransactionRepo{s: e.store},
		e.gateway, e.notifier, e.publisher, e.audit, "NGN", "https://app.example.com/payments/verify",
	)
}

func (e *testEnv) notificationUsecase(batchSize int) NotificationUsecase {
	return NewNotificationUsecase(
		e.transactor, e.log,
		e.notificationRepo, &memProfileRepo{s: e.store},
		e.notifier, e.hub, e.enqueuer, e.audit, batchSize,
	)
}

func (e *testEnv) appointmentUsecase() AppointmentUsecase {
	return NewAppointmentUsecase(e.transactor, e.log, &memAppointmentRepo{s: e.store}, &memIntentRepo{s: e.store}, e.notifier, e.audit)
}
