package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"medicare-backend/internal/domain/entity"
	"medicare-backend/internal/domain/repository"
	"medicare-backend/internal/infrastructure/lock"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// fakeUserRepo is an in-memory UserRepository
type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context, filter repository.UserFilter) ([]entity.User, int64, error) {
	var users []entity.User
	for _, user := range r.users {
		if filter.Role != "" && user.Role != filter.Role {
			continue
		}
		if filter.Status != "" && user.Status != filter.Status {
			continue
		}
		users = append(users, *user)
	}
	return users, int64(len(users)), nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

// fakeAppointmentRepo is an in-memory AppointmentRepository
type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*entity.Appointment
}

func newFakeAppointmentRepo(appointments ...*entity.Appointment) *fakeAppointmentRepo {
	repo := &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*entity.Appointment)}
	for _, appointment := range appointments {
		if appointment.ID == uuid.Nil {
			appointment.ID = uuid.New()
		}
		repo.appointments[appointment.ID] = appointment
	}
	return repo
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, appointment *entity.Appointment) error {
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	appointment.CreatedAt = time.Now().UTC()
	r.appointments[appointment.ID] = appointment
	return nil
}

func (r *fakeAppointmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	return r.appointments[id], nil
}

func (r *fakeAppointmentRepo) FindAll(ctx context.Context, filter repository.AppointmentFilter) ([]entity.Appointment, int64, error) {
	var out []entity.Appointment
	for _, appointment := range r.appointments {
		if filter.Status != "" && string(appointment.Status) != filter.Status {
			continue
		}
		if filter.Date != "" && appointment.Date.Format("2006-01-02") != filter.Date {
			continue
		}
		if filter.DoctorID != "" && appointment.DoctorID.String() != filter.DoctorID {
			continue
		}
		out = append(out, *appointment)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Time > out[j].Time
	})
	return out, int64(len(out)), nil
}

func (r *fakeAppointmentRepo) CountByStatus(ctx context.Context) (map[entity.AppointmentStatus]int64, error) {
	counts := make(map[entity.AppointmentStatus]int64)
	for _, appointment := range r.appointments {
		counts[appointment.Status]++
	}
	return counts, nil
}

func (r *fakeAppointmentRepo) CountOnDate(ctx context.Context, date time.Time) (int64, error) {
	var count int64
	for _, appointment := range r.appointments {
		if appointment.Date.Format("2006-01-02") == date.Format("2006-01-02") {
			count++
		}
	}
	return count, nil
}

func (r *fakeAppointmentRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]entity.Appointment, error) {
	var out []entity.Appointment
	for _, appointment := range r.appointments {
		if appointment.PatientID == userID || appointment.DoctorID == userID {
			out = append(out, *appointment)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (r *fakeAppointmentRepo) FindConfirmedBySlot(ctx context.Context, doctorID uuid.UUID, date time.Time, timeOfDay string) (*entity.Appointment, error) {
	for _, appointment := range r.appointments {
		if appointment.DoctorID == doctorID &&
			appointment.Date.Format("2006-01-02") == date.Format("2006-01-02") &&
			appointment.Time == timeOfDay &&
			appointment.Status == entity.AppointmentStatusConfirmed {
			return appointment, nil
		}
	}
	return nil, nil
}

func (r *fakeAppointmentRepo) FindConfirmedTimes(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error) {
	var times []string
	for _, appointment := range r.appointments {
		if appointment.DoctorID == doctorID &&
			appointment.Date.Format("2006-01-02") == date.Format("2006-01-02") &&
			appointment.Status == entity.AppointmentStatusConfirmed {
			times = append(times, appointment.Time)
		}
	}
	return times, nil
}

func (r *fakeAppointmentRepo) ExistsConfirmedBetween(ctx context.Context, patientID, doctorID uuid.UUID) (bool, error) {
	for _, appointment := range r.appointments {
		if appointment.PatientID == patientID &&
			appointment.DoctorID == doctorID &&
			appointment.Status == entity.AppointmentStatusConfirmed {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAppointmentRepo) FindByStatus(ctx context.Context, status entity.AppointmentStatus) ([]entity.Appointment, error) {
	var out []entity.Appointment
	for _, appointment := range r.appointments {
		if appointment.Status == status {
			out = append(out, *appointment)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) Update(ctx context.Context, appointment *entity.Appointment) error {
	r.appointments[appointment.ID] = appointment
	return nil
}

func (r *fakeAppointmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.appointments, id)
	return nil
}

// fakeConversationRepo is an in-memory ConversationRepository
type fakeConversationRepo struct {
	conversations map[uuid.UUID]*entity.Conversation
	messages      []*entity.Message
	nextMessageID int64
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: make(map[uuid.UUID]*entity.Conversation)}
}

func (r *fakeConversationRepo) Create(ctx context.Context, conversation *entity.Conversation) error {
	low, high := entity.NormalizePair(conversation.ParticipantA, conversation.ParticipantB)
	for _, existing := range r.conversations {
		if existing.ParticipantA == low && existing.ParticipantB == high {
			return repository.ErrDuplicatePair
		}
	}
	conversation.ParticipantA, conversation.ParticipantB = low, high
	if conversation.ID == uuid.Nil {
		conversation.ID = uuid.New()
	}
	conversation.CreatedAt = time.Now().UTC()
	r.conversations[conversation.ID] = conversation
	return nil
}

func (r *fakeConversationRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Conversation, error) {
	return r.conversations[id], nil
}

func (r *fakeConversationRepo) FindByPair(ctx context.Context, participantA, participantB uuid.UUID) (*entity.Conversation, error) {
	low, high := entity.NormalizePair(participantA, participantB)
	for _, conversation := range r.conversations {
		if conversation.ParticipantA == low && conversation.ParticipantB == high {
			return conversation, nil
		}
	}
	return nil, nil
}

func (r *fakeConversationRepo) FindByParticipant(ctx context.Context, userID uuid.UUID) ([]entity.Conversation, error) {
	var out []entity.Conversation
	for _, conversation := range r.conversations {
		if conversation.HasParticipant(userID) {
			out = append(out, *conversation)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessageAt.After(out[j].LastMessageAt)
	})
	return out, nil
}

func (r *fakeConversationRepo) AppendMessage(ctx context.Context, conversation *entity.Conversation, message *entity.Message) error {
	r.nextMessageID++
	message.ID = r.nextMessageID
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	r.messages = append(r.messages, message)
	conversation.LastMessageAt = message.CreatedAt
	r.conversations[conversation.ID] = conversation
	return nil
}

func (r *fakeConversationRepo) FindMessages(ctx context.Context, conversationID uuid.UUID) ([]entity.Message, error) {
	var out []entity.Message
	for _, message := range r.messages {
		if message.ConversationID == conversationID {
			out = append(out, *message)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// fakeHospitalRepo is an in-memory HospitalRepository
type fakeHospitalRepo struct {
	hospitals map[uuid.UUID]*entity.Hospital
}

func newFakeHospitalRepo(hospitals ...*entity.Hospital) *fakeHospitalRepo {
	repo := &fakeHospitalRepo{hospitals: make(map[uuid.UUID]*entity.Hospital)}
	for _, hospital := range hospitals {
		if hospital.ID == uuid.Nil {
			hospital.ID = uuid.New()
		}
		repo.hospitals[hospital.ID] = hospital
	}
	return repo
}

func (r *fakeHospitalRepo) Create(ctx context.Context, hospital *entity.Hospital) error {
	if hospital.ID == uuid.Nil {
		hospital.ID = uuid.New()
	}
	r.hospitals[hospital.ID] = hospital
	return nil
}

func (r *fakeHospitalRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Hospital, error) {
	return r.hospitals[id], nil
}

func (r *fakeHospitalRepo) FindAll(ctx context.Context) ([]entity.Hospital, error) {
	var out []entity.Hospital
	for _, hospital := range r.hospitals {
		out = append(out, *hospital)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeHospitalRepo) Update(ctx context.Context, hospital *entity.Hospital) error {
	r.hospitals[hospital.ID] = hospital
	return nil
}

func (r *fakeHospitalRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.hospitals, id)
	return nil
}

// fakeAuditLogRepo is an in-memory AuditLogRepository
type fakeAuditLogRepo struct {
	entries []*entity.AuditLog
}

func (r *fakeAuditLogRepo) Create(ctx context.Context, log *entity.AuditLog) error {
	log.ID = int64(len(r.entries) + 1)
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	r.entries = append(r.entries, log)
	return nil
}

func (r *fakeAuditLogRepo) FindAll(ctx context.Context, filter repository.AuditLogFilter) ([]entity.AuditLog, int64, error) {
	var out []entity.AuditLog
	for _, entry := range r.entries {
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		out = append(out, *entry)
	}
	return out, int64(len(out)), nil
}

func (r *fakeAuditLogRepo) FindByID(ctx context.Context, id int64) (*entity.AuditLog, error) {
	for _, entry := range r.entries {
		if entry.ID == id {
			return entry, nil
		}
	}
	return nil, nil
}

func (r *fakeAuditLogRepo) byAction(action string) []*entity.AuditLog {
	var out []*entity.AuditLog
	for _, entry := range r.entries {
		if entry.Action == action {
			out = append(out, entry)
		}
	}
	return out
}

// fakeSettingRepo is an in-memory SystemSettingRepository keyed by setting key
type fakeSettingRepo struct {
	settings map[string]*entity.SystemSetting
}

func newFakeSettingRepo() *fakeSettingRepo {
	return &fakeSettingRepo{settings: make(map[string]*entity.SystemSetting)}
}

func (r *fakeSettingRepo) FindAll(ctx context.Context) ([]entity.SystemSetting, error) {
	var out []entity.SystemSetting
	for _, setting := range r.settings {
		out = append(out, *setting)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *fakeSettingRepo) Upsert(ctx context.Context, setting *entity.SystemSetting) error {
	if existing, ok := r.settings[setting.Key]; ok {
		existing.Value = setting.Value
		existing.Description = setting.Description
		existing.Category = setting.Category
		existing.UpdatedBy = setting.UpdatedBy
		existing.UpdatedAt = time.Now().UTC()
		return nil
	}
	if setting.ID == uuid.Nil {
		setting.ID = uuid.New()
	}
	setting.UpdatedAt = time.Now().UTC()
	copied := *setting
	r.settings[setting.Key] = &copied
	return nil
}

// fakeLocker runs the critical section inline. Set held to simulate losing
// the lock race.
type fakeLocker struct {
	held map[string]bool
}

func (l *fakeLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if l.held[key] {
		return lock.ErrLockNotAcquired
	}
	return fn(ctx)
}

// recordingNotifier captures every emit for assertions
type recordingNotifier struct {
	mu    sync.Mutex
	emits []recordedEmit
}

type recordedEmit struct {
	Room    string
	Event   string
	Payload interface{}
}

func (n *recordingNotifier) EmitToRoom(room, event string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.emits = append(n.emits, recordedEmit{Room: room, Event: event, Payload: payload})
}

func (n *recordingNotifier) byEvent(event string) []recordedEmit {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []recordedEmit
	for _, emit := range n.emits {
		if emit.Event == event {
			out = append(out, emit)
		}
	}
	return out
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.emits)
}
