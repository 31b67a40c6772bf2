package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/realtime"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- users ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User

	// setCodeErrs are returned, in order, by the next SetTrainerCode calls.
	setCodeErrs []error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*domain.User{}}
}

func (r *fakeUserRepo) add(u domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.users[u.ID] = &u
	return &u
}

func (r *fakeUserRepo) get(id primitive.ObjectID) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *r.users[id]
	return &cp
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email || (user.TrainerCode != "" && u.TrainerCode == user.TrainerCode) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	cp := *user
	r.users[user.ID] = &cp
	return user.ID, nil
}

func (r *fakeUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ID == id })
}

func (r *fakeUserRepo) GetByTrainerCode(_ context.Context, code string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.IsTrainer() && u.TrainerCode == code })
}

func (r *fakeUserRepo) SetTrainerLink(_ context.Context, studentID primitive.ObjectID, trainerID *primitive.ObjectID, pending bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[studentID]
	if !ok {
		return repository.ErrNotFound
	}
	u.TrainerID = trainerID
	u.PendingTrainerApproval = pending
	return nil
}

func (r *fakeUserRepo) SetTrainerCode(_ context.Context, trainerID primitive.ObjectID, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.setCodeErrs) > 0 {
		err := r.setCodeErrs[0]
		r.setCodeErrs = r.setCodeErrs[1:]
		return err
	}
	u, ok := r.users[trainerID]
	if !ok {
		return repository.ErrNotFound
	}
	u.TrainerCode = code
	return nil
}

func (r *fakeUserRepo) students(trainerID primitive.ObjectID, pending *bool) []domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, u := range r.users {
		if !u.IsStudent() || u.TrainerID == nil || *u.TrainerID != trainerID {
			continue
		}
		if pending != nil && u.PendingTrainerApproval != *pending {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *fakeUserRepo) ListStudentsByTrainer(_ context.Context, trainerID primitive.ObjectID, pending *bool) ([]domain.User, error) {
	return r.students(trainerID, pending), nil
}

func (r *fakeUserRepo) CountStudentsByTrainer(_ context.Context, trainerID primitive.ObjectID, pending *bool) (int64, error) {
	return int64(len(r.students(trainerID, pending))), nil
}

func (r *fakeUserRepo) UpdatePresence(_ context.Context, userID primitive.ObjectID, online bool, lastSeen time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsOnline = online
	u.LastSeen = &lastSeen
	return nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, userID primitive.ObjectID, name, avatarURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Name = name
	u.AvatarURL = avatarURL
	return nil
}

func (r *fakeUserRepo) CountByLevel(context.Context) (map[domain.Level]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[domain.Level]int64{}
	for _, u := range r.users {
		out[u.Level]++
	}
	return out, nil
}

func (r *fakeUserRepo) CountPendingLinks(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.PendingTrainerApproval {
			n++
		}
	}
	return n, nil
}

// --- suggestions ---

type fakeSuggestionRepo struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*domain.Suggestion
}

func newFakeSuggestionRepo() *fakeSuggestionRepo {
	return &fakeSuggestionRepo{items: map[primitive.ObjectID]*domain.Suggestion{}}
}

func (r *fakeSuggestionRepo) Create(_ context.Context, s *domain.Suggestion) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = primitive.NewObjectID()
	cp := *s
	r.items[s.ID] = &cp
	return s.ID, nil
}

func (r *fakeSuggestionRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSuggestionRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, from, next domain.SuggestionStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok || s.Status != from {
		return repository.ErrUpdateFailed
	}
	s.Status = next
	s.RespondedAt = &at
	return nil
}

func (r *fakeSuggestionRepo) list(match func(*domain.Suggestion) bool, status domain.SuggestionStatus) []domain.Suggestion {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Suggestion
	for _, s := range r.items {
		if match(s) && (status == "" || s.Status == status) {
			out = append(out, *s)
		}
	}
	return out
}

func (r *fakeSuggestionRepo) ListByStudent(_ context.Context, studentID primitive.ObjectID, status domain.SuggestionStatus) ([]domain.Suggestion, error) {
	return r.list(func(s *domain.Suggestion) bool { return s.StudentID == studentID }, status), nil
}

func (r *fakeSuggestionRepo) ListByTrainer(_ context.Context, trainerID primitive.ObjectID, status domain.SuggestionStatus) ([]domain.Suggestion, error) {
	return r.list(func(s *domain.Suggestion) bool { return s.TrainerID == trainerID }, status), nil
}

func (r *fakeSuggestionRepo) CountByStatus(context.Context) (map[domain.SuggestionStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[domain.SuggestionStatus]int64{}
	for _, s := range r.items {
		out[s.Status]++
	}
	return out, nil
}

// --- tasks ---

type fakeTaskRepo struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*domain.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{items: map[primitive.ObjectID]*domain.Task{}}
}

func (r *fakeTaskRepo) Create(_ context.Context, t *domain.Task) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = primitive.NewObjectID()
	cp := *t
	r.items[t.ID] = &cp
	return t.ID, nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, kind domain.TaskKind, id primitive.ObjectID) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok || t.Kind != kind {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, task *domain.Task, from domain.TaskStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[task.ID]
	if !ok || t.Status != from {
		return repository.ErrUpdateFailed
	}
	cp := *task
	r.items[task.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) list(kind domain.TaskKind, match func(*domain.Task) bool, status domain.TaskStatus) []domain.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Task
	for _, t := range r.items {
		if t.Kind == kind && match(t) && (status == "" || t.Status == status) {
			out = append(out, *t)
		}
	}
	return out
}

func (r *fakeTaskRepo) ListByStudent(_ context.Context, kind domain.TaskKind, studentID primitive.ObjectID, status domain.TaskStatus) ([]domain.Task, error) {
	return r.list(kind, func(t *domain.Task) bool { return t.StudentID == studentID }, status), nil
}

func (r *fakeTaskRepo) ListByTrainer(_ context.Context, kind domain.TaskKind, trainerID primitive.ObjectID, status domain.TaskStatus) ([]domain.Task, error) {
	return r.list(kind, func(t *domain.Task) bool { return t.TrainerID == trainerID }, status), nil
}

func (r *fakeTaskRepo) CountByStatus(_ context.Context, kind domain.TaskKind) (map[domain.TaskStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[domain.TaskStatus]int64{}
	for _, t := range r.items {
		if t.Kind == kind {
			out[t.Status]++
		}
	}
	return out, nil
}

// --- workouts ---

type fakeWorkoutRepo struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*domain.Workout
}

func newFakeWorkoutRepo() *fakeWorkoutRepo {
	return &fakeWorkoutRepo{items: map[primitive.ObjectID]*domain.Workout{}}
}

func (r *fakeWorkoutRepo) Create(_ context.Context, w *domain.Workout) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w.ID = primitive.NewObjectID()
	if w.Status == "" {
		w.Status = domain.PlanPending
	}
	cp := *w
	r.items[w.ID] = &cp
	return w.ID, nil
}

func (r *fakeWorkoutRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *fakeWorkoutRepo) list(match func(*domain.Workout) bool) []domain.Workout {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Workout
	for _, w := range r.items {
		if match(w) {
			out = append(out, *w)
		}
	}
	return out
}

func (r *fakeWorkoutRepo) ListByStudent(_ context.Context, studentID primitive.ObjectID) ([]domain.Workout, error) {
	return r.list(func(w *domain.Workout) bool { return w.StudentID == studentID }), nil
}

func (r *fakeWorkoutRepo) ListByTrainer(_ context.Context, trainerID primitive.ObjectID) ([]domain.Workout, error) {
	return r.list(func(w *domain.Workout) bool { return w.TrainerID == trainerID }), nil
}

func (r *fakeWorkoutRepo) MarkCompleted(_ context.Context, id primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.items[id]
	if !ok || w.Status != domain.PlanPending {
		return repository.ErrUpdateFailed
	}
	w.Status = domain.PlanCompleted
	w.CompletedAt = &at
	return nil
}

func (r *fakeWorkoutRepo) Delete(_ context.Context, id, trainerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.items[id]
	if !ok || w.TrainerID != trainerID {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeWorkoutRepo) DeleteExpiredPending(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, w := range r.items {
		if w.Expired(now) {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeWorkoutRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

// --- diets ---

type fakeDietRepo struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*domain.Diet
}

func newFakeDietRepo() *fakeDietRepo {
	return &fakeDietRepo{items: map[primitive.ObjectID]*domain.Diet{}}
}

func (r *fakeDietRepo) Create(_ context.Context, d *domain.Diet) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d.ID = primitive.NewObjectID()
	cp := *d
	r.items[d.ID] = &cp
	return d.ID, nil
}

func (r *fakeDietRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Diet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDietRepo) list(match func(*domain.Diet) bool) []domain.Diet {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Diet
	for _, d := range r.items {
		if match(d) {
			out = append(out, *d)
		}
	}
	return out
}

func (r *fakeDietRepo) ListByStudent(_ context.Context, studentID primitive.ObjectID) ([]domain.Diet, error) {
	return r.list(func(d *domain.Diet) bool { return d.StudentID == studentID }), nil
}

func (r *fakeDietRepo) ListByTrainer(_ context.Context, trainerID primitive.ObjectID) ([]domain.Diet, error) {
	return r.list(func(d *domain.Diet) bool { return d.TrainerID == trainerID }), nil
}

func (r *fakeDietRepo) MarkCompleted(_ context.Context, id primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.items[id]
	if !ok || d.Status != domain.PlanPending {
		return repository.ErrUpdateFailed
	}
	d.Status = domain.PlanCompleted
	d.CompletedAt = &at
	return nil
}

func (r *fakeDietRepo) Delete(_ context.Context, id, trainerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.items[id]
	if !ok || d.TrainerID != trainerID {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// --- posts ---

type fakePostRepo struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*domain.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{items: map[primitive.ObjectID]*domain.Post{}}
}

func (r *fakePostRepo) Create(_ context.Context, p *domain.Post) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = primitive.NewObjectID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	cp := *p
	r.items[p.ID] = &cp
	return p.ID, nil
}

func (r *fakePostRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	cp.Likes = append([]primitive.ObjectID(nil), p.Likes...)
	return &cp, nil
}

func (r *fakePostRepo) List(_ context.Context, before time.Time, limit int64) ([]domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Post
	for _, p := range r.items {
		if p.CreatedAt.Before(before) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePostRepo) SetLike(_ context.Context, id, userID primitive.ObjectID, liked bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	var likes []primitive.ObjectID
	for _, l := range p.Likes {
		if l != userID {
			likes = append(likes, l)
		}
	}
	if liked {
		likes = append(likes, userID)
	}
	p.Likes = likes
	return nil
}

func (r *fakePostRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// --- messages ---

type fakeMessageRepo struct {
	mu    sync.Mutex
	items []*domain.Message
}

func (r *fakeMessageRepo) Create(_ context.Context, m *domain.Message) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Now().UTC()
	cp := *m
	r.items = append(r.items, &cp)
	return m.ID, nil
}

func (r *fakeMessageRepo) Conversation(_ context.Context, a, b primitive.ObjectID, limit int64) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for i := len(r.items) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		m := r.items[i]
		if (m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) MarkRead(_ context.Context, sender, recipient primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.items {
		if m.SenderID == sender && m.RecipientID == recipient && !m.Read {
			m.Read = true
			n++
		}
	}
	return n, nil
}

// --- uploads ---

type fakeUploadRepo struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*domain.Upload
}

func newFakeUploadRepo() *fakeUploadRepo {
	return &fakeUploadRepo{items: map[primitive.ObjectID]*domain.Upload{}}
}

func (r *fakeUploadRepo) Create(_ context.Context, u *domain.Upload) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.ObjectKey == u.ObjectKey {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	cp := *u
	r.items[u.ID] = &cp
	return u.ID, nil
}

func (r *fakeUploadRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUploadRepo) GetByObjectKey(_ context.Context, key string) (*domain.Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.items {
		if u.ObjectKey == key {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUploadRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repository.ErrDeleteFailed
	}
	delete(r.items, id)
	return nil
}

// --- realtime ---

type fakePresence struct {
	mu     sync.Mutex
	online map[string]time.Duration
}

func newFakePresence() *fakePresence {
	return &fakePresence{online: map[string]time.Duration{}}
}

func (p *fakePresence) Touch(_ context.Context, userID string, ttl time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online[userID] = ttl
	return nil
}

func (p *fakePresence) Online(_ context.Context, userID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.online[userID]
	return ok, nil
}

func (p *fakePresence) Clear(_ context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.online, userID)
	return nil
}

// expire simulates the key's TTL lapsing.
func (p *fakePresence) expire(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.online, userID)
}

type published struct {
	UserID string
	Event  realtime.Event
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *fakePublisher) Publish(_ context.Context, userID string, event realtime.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{UserID: userID, Event: event})
	return nil
}

func (p *fakePublisher) typesFor(userID primitive.ObjectID) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		if e.UserID == userID.Hex() {
			out = append(out, e.Event.Type)
		}
	}
	return out
}

// --- storage ---

type fakeStorage struct {
	deleted []string
}

func (s *fakeStorage) GeneratePresignedUploadURL(_ context.Context, objectKey, _ string, _ time.Duration) (string, error) {
	return "https://upload.example.com/" + objectKey + "?sig=x", nil
}

func (s *fakeStorage) PublicURL(objectKey string) string {
	return "https://cdn.example.com/" + objectKey
}

func (s *fakeStorage) DeleteObject(_ context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	return nil
}

// fixedClock returns a now func that always reports t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
