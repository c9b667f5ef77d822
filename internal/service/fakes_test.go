package service

import (
	"context"
	"io"
	"sync"

	"github.com/iliyamo/pv-site-manager/internal/model"
	"github.com/iliyamo/pv-site-manager/internal/ocr"
	"github.com/iliyamo/pv-site-manager/internal/queue"
	"github.com/iliyamo/pv-site-manager/internal/repository"
	"github.com/iliyamo/pv-site-manager/internal/security"
)

func identity(role model.Role) model.Identity {
	return model.Identity{ID: uint64(role) + 1, Username: role.String(), Role: role}
}

type fakeUsers struct {
	byName map[string]model.Identity
	nextID uint64
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byName: map[string]model.Identity{}} }

func (f *fakeUsers) Create(_ context.Context, username, hash string, role model.Role) (uint64, error) {
	if _, ok := f.byName[username]; ok {
		return 0, repository.ErrUsernameExists
	}
	f.nextID++
	f.byName[username] = model.Identity{ID: f.nextID, Username: username, PasswordHash: hash, Role: role}
	return f.nextID, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (model.Identity, error) {
	u, ok := f.byName[username]
	if !ok {
		return model.Identity{}, model.ErrIdentityNotFound
	}
	return u, nil
}

type stubIssuer struct{ issued []string }

func (s *stubIssuer) Issue(username string) (security.Token, error) {
	s.issued = append(s.issued, username)
	return security.Token{Value: "token-for-" + username}, nil
}

type fakeLogs struct {
	rows []model.DailyLog
}

func (f *fakeLogs) Create(_ context.Context, l model.DailyLog) (uint64, error) {
	l.ID = uint64(len(f.rows) + 1)
	f.rows = append(f.rows, l)
	return l.ID, nil
}

func (f *fakeLogs) ListByUser(_ context.Context, userID uint64, skip, limit int) ([]model.DailyLogSummary, error) {
	var out []model.DailyLogSummary
	for _, l := range f.rows {
		if l.UserID == userID {
			out = append(out, model.DailyLogSummary{ID: l.ID, Date: l.Date, WorkersCount: l.WorkersCount})
		}
	}
	return window(out, skip, limit), nil
}

func (f *fakeLogs) GetForUser(_ context.Context, id, userID uint64) (model.DailyLog, error) {
	for _, l := range f.rows {
		if l.ID == id && l.UserID == userID {
			return l, nil
		}
	}
	return model.DailyLog{}, repository.ErrLogNotFound
}

func (f *fakeLogs) Exists(_ context.Context, id uint64) (bool, error) {
	return id >= 1 && int(id) <= len(f.rows), nil
}

type fakeMaterials struct {
	rows map[uint64]model.Material
	// staleCheck makes ExistsByDDT always report false, as when two
	// creates race past the pre-check.
	staleCheck bool
	creates    int
}

func newFakeMaterials() *fakeMaterials { return &fakeMaterials{rows: map[uint64]model.Material{}} }

func (f *fakeMaterials) Create(_ context.Context, m model.Material) (uint64, error) {
	f.creates++
	for _, r := range f.rows {
		if r.DDTNumber == m.DDTNumber {
			return 0, repository.ErrDuplicateDDT
		}
	}
	m.ID = uint64(len(f.rows) + 1)
	f.rows[m.ID] = m
	return m.ID, nil
}

func (f *fakeMaterials) ExistsByDDT(_ context.Context, ddt string) (bool, error) {
	if f.staleCheck {
		return false, nil
	}
	for _, r := range f.rows {
		if r.DDTNumber == ddt {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMaterials) Exists(_ context.Context, id uint64) (bool, error) {
	_, ok := f.rows[id]
	return ok, nil
}

func (f *fakeMaterials) Get(_ context.Context, id uint64) (model.Material, error) {
	m, ok := f.rows[id]
	if !ok {
		return model.Material{}, repository.ErrMaterialNotFound
	}
	return m, nil
}

func (f *fakeMaterials) List(_ context.Context, skip, limit int) ([]model.Material, error) {
	out := make([]model.Material, 0, len(f.rows))
	for i := uint64(1); i <= uint64(len(f.rows)); i++ {
		out = append(out, f.rows[i])
	}
	return window(out, skip, limit), nil
}

func (f *fakeMaterials) Update(_ context.Context, m model.Material) error {
	if _, ok := f.rows[m.ID]; !ok {
		return repository.ErrMaterialNotFound
	}
	f.rows[m.ID] = m
	return nil
}

type fakeProgress struct {
	rows    []model.ProgressKPI
	updates int
}

func (f *fakeProgress) Create(_ context.Context, k model.ProgressKPI) (uint64, error) {
	k.ID = uint64(len(f.rows) + 1)
	f.rows = append(f.rows, k)
	return k.ID, nil
}

func (f *fakeProgress) Get(_ context.Context, id uint64) (model.ProgressKPI, error) {
	if id == 0 || int(id) > len(f.rows) {
		return model.ProgressKPI{}, repository.ErrProgressNotFound
	}
	return f.rows[id-1], nil
}

func (f *fakeProgress) Update(_ context.Context, k model.ProgressKPI) error {
	if k.ID == 0 || int(k.ID) > len(f.rows) {
		return repository.ErrProgressNotFound
	}
	f.updates++
	f.rows[k.ID-1] = k
	return nil
}

func (f *fakeProgress) List(_ context.Context, skip, limit int) ([]model.ProgressKPI, error) {
	return window(append([]model.ProgressKPI(nil), f.rows...), skip, limit), nil
}

func (f *fakeProgress) ListAll(context.Context) ([]model.ProgressKPI, error) {
	return append([]model.ProgressKPI(nil), f.rows...), nil
}

type fakeDocs struct {
	rows map[uint64]model.Document
	next uint64
}

func newFakeDocs() *fakeDocs { return &fakeDocs{rows: map[uint64]model.Document{}} }

func (f *fakeDocs) Create(_ context.Context, d model.Document) (uint64, error) {
	f.next++
	d.ID = f.next
	f.rows[d.ID] = d
	return d.ID, nil
}

func (f *fakeDocs) Get(_ context.Context, id uint64) (model.Document, error) {
	d, ok := f.rows[id]
	if !ok {
		return model.Document{}, repository.ErrDocumentNotFound
	}
	return d, nil
}

func (f *fakeDocs) List(_ context.Context, skip, limit int) ([]model.Document, error) {
	var out []model.Document
	for i := uint64(1); i <= f.next; i++ {
		if d, ok := f.rows[i]; ok {
			out = append(out, d)
		}
	}
	return window(out, skip, limit), nil
}

func (f *fakeDocs) Delete(_ context.Context, id uint64) error {
	if _, ok := f.rows[id]; !ok {
		return repository.ErrDocumentNotFound
	}
	delete(f.rows, id)
	return nil
}

type recordingBlobs struct {
	puts map[string][]byte
}

func newRecordingBlobs() *recordingBlobs { return &recordingBlobs{puts: map[string][]byte{}} }

func (r *recordingBlobs) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	r.puts[key] = b
	return nil
}

type stubExtractor struct {
	res   ocr.Result
	err   error
	calls int
}

func (s *stubExtractor) Run(context.Context, []byte) (ocr.Result, error) {
	s.calls++
	return s.res, s.err
}

type capturePublisher struct {
	mu     sync.Mutex
	events []queue.Event
	err    error
}

func (c *capturePublisher) Publish(_ context.Context, ev queue.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, ev)
	return nil
}

func (c *capturePublisher) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	for i, ev := range c.events {
		out[i] = ev.Type
	}
	return out
}

func window[T any](in []T, skip, limit int) []T {
	if skip >= len(in) {
		return []T{}
	}
	in = in[skip:]
	if limit < len(in) {
		in = in[:limit]
	}
	return in
}
