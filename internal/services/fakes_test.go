package services

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SundayYogurt/rolematch/internal/domain"
	"github.com/SundayYogurt/rolematch/internal/dto"
	"github.com/SundayYogurt/rolematch/internal/repository"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var errStorage = errors.New("storage unavailable")

// fakeStore is an in-memory stand-in for Postgres. WithinTx holds the store
// mutex for the whole callback and restores a snapshot when it fails.
type fakeStore struct {
	mu     sync.Mutex
	nextID uint

	users    map[uint]domain.User
	tokens   map[string]uint
	projects map[uint]domain.Project
	roles    map[uint]domain.Role
	apps     map[uint]domain.RoleApplication

	// failTakeSeat makes TakeSeat return a storage error after Transition ran.
	failTakeSeat bool
	// failLists makes list reads return a storage error.
	failLists bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[uint]domain.User{},
		tokens:   map[string]uint{},
		projects: map[uint]domain.Project{},
		roles:    map[uint]domain.Role{},
		apps:     map[uint]domain.RoleApplication{},
	}
}

func (f *fakeStore) id() uint {
	f.nextID++
	return f.nextID
}

type fakeSnapshot struct {
	nextID   uint
	projects map[uint]domain.Project
	roles    map[uint]domain.Role
	apps     map[uint]domain.RoleApplication
}

func (f *fakeStore) snapshot() fakeSnapshot {
	s := fakeSnapshot{
		nextID:   f.nextID,
		projects: make(map[uint]domain.Project, len(f.projects)),
		roles:    make(map[uint]domain.Role, len(f.roles)),
		apps:     make(map[uint]domain.RoleApplication, len(f.apps)),
	}
	for k, v := range f.projects {
		s.projects[k] = v
	}
	for k, v := range f.roles {
		s.roles[k] = v
	}
	for k, v := range f.apps {
		s.apps[k] = v
	}
	return s
}

func (f *fakeStore) restore(s fakeSnapshot) {
	f.nextID = s.nextID
	f.projects = s.projects
	f.roles = s.roles
	f.apps = s.apps
}

// fixtures

func (f *fakeStore) addUser(userType domain.UserType, name string) domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := domain.User{
		ID:       f.id(),
		Username: strings.ToLower(name),
		RealName: name,
		UserType: userType,
		Contact:  strings.ToLower(name) + "@example.com",
		Status:   domain.UserStatusActive,
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeStore) addProject(publisherID uint, status domain.ProjectStatus) domain.Project {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := domain.Project{
		ID:          f.id(),
		Name:        "Project",
		PublisherID: publisherID,
		Company:     "Acme",
		Status:      status,
		PublishedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	f.projects[p.ID] = p
	return p
}

func (f *fakeStore) addRole(projectID uint, limit int, status domain.RoleStatus) domain.Role {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := domain.Role{
		ID:        f.id(),
		ProjectID: projectID,
		Name:      "role",
		TaskDesc:  "task",
		LimitNum:  limit,
		Status:    status,
	}
	f.roles[r.ID] = r
	return r
}

func (f *fakeStore) addApplication(roleID, studentID uint, status domain.ApplicationStatus) domain.RoleApplication {
	f.mu.Lock()
	defer f.mu.Unlock()
	at := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	a := domain.RoleApplication{
		ID:        f.id(),
		RoleID:    roleID,
		ProjectID: f.roles[roleID].ProjectID,
		StudentID: studentID,
		Status:    status,
		AppliedAt: at,
		UpdatedAt: at,
	}
	f.apps[a.ID] = a
	return a
}

func (f *fakeStore) role(id uint) domain.Role {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roles[id]
}

func (f *fakeStore) app(id uint) domain.RoleApplication {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.apps[id]
}

func (f *fakeStore) setProjectStatus(id uint, status domain.ProjectStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.projects[id]
	p.Status = status
	f.projects[id] = p
}

func (f *fakeStore) setRole(r domain.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[r.ID] = r
}

func (f *fakeStore) countApps() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.apps)
}

// unlocked helpers

func (f *fakeStore) acceptedIn(projectID, studentID uint) bool {
	for _, a := range f.apps {
		if a.ProjectID == projectID && a.StudentID == studentID && a.Status == domain.ApplicationStatusAccepted {
			return true
		}
	}
	return false
}

func sortedApps(apps map[uint]domain.RoleApplication) []domain.RoleApplication {
	out := make([]domain.RoleApplication, 0, len(apps))
	for _, a := range apps {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ApplicationRepository

type fakeApplications struct{ *fakeStore }

var _ repository.ApplicationRepository = fakeApplications{}

func (f fakeApplications) WithinTx(fn func(tx repository.ApplicationTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := f.snapshot()
	if err := fn(fakeTx{f.fakeStore}); err != nil {
		f.restore(snap)
		return err
	}
	return nil
}

func (f fakeApplications) CancelPending(applicationID, studentID uint, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[applicationID]
	if !ok || a.StudentID != studentID || a.Status != domain.ApplicationStatusPending {
		return false, nil
	}
	a.Status = domain.ApplicationStatusCancelled
	a.UpdatedAt = at
	f.apps[a.ID] = a
	return true, nil
}

func (f fakeApplications) FindByID(applicationID uint) (*domain.RoleApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[applicationID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (f fakeApplications) ListByStudent(studentID uint) ([]dto.StudentApplicationRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLists {
		return nil, errStorage
	}
	rows := []dto.StudentApplicationRow{}
	for _, a := range sortedApps(f.apps) {
		if a.StudentID != studentID {
			continue
		}
		r := f.roles[a.RoleID]
		p := f.projects[a.ProjectID]
		rows = append(rows, dto.StudentApplicationRow{
			ApplicationID: a.ID,
			Status:        string(a.Status),
			Motivation:    a.Motivation,
			ApplyTime:     a.AppliedAt,
			UpdateTime:    a.UpdatedAt,
			RoleID:        r.ID,
			RoleName:      r.Name,
			ProjectID:     p.ID,
			ProjectName:   p.Name,
			Company:       p.Company,
		})
	}
	return rows, nil
}

func (f fakeApplications) ListByRole(roleID uint) ([]dto.RoleApplicantRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLists {
		return nil, errStorage
	}
	rows := []dto.RoleApplicantRow{}
	for _, a := range sortedApps(f.apps) {
		if a.RoleID != roleID {
			continue
		}
		u := f.users[a.StudentID]
		rows = append(rows, dto.RoleApplicantRow{
			ApplicationID: a.ID,
			Status:        string(a.Status),
			Motivation:    a.Motivation,
			ApplyTime:     a.AppliedAt,
			UpdateTime:    a.UpdatedAt,
			StudentID:     u.ID,
			StudentName:   u.Username,
			RealName:      u.RealName,
		})
	}
	return rows, nil
}

func (f fakeApplications) ListAcceptedByProject(projectID uint) ([]dto.TeamMemberRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := []dto.TeamMemberRow{}
	for _, a := range sortedApps(f.apps) {
		if a.ProjectID != projectID || a.Status != domain.ApplicationStatusAccepted {
			continue
		}
		u := f.users[a.StudentID]
		r := f.roles[a.RoleID]
		rows = append(rows, dto.TeamMemberRow{
			ApplicationID: a.ID,
			StudentID:     u.ID,
			StudentName:   u.Username,
			RealName:      u.RealName,
			RoleID:        r.ID,
			RoleName:      r.Name,
			JoinedAt:      a.UpdatedAt,
		})
	}
	return rows, nil
}

func (f fakeApplications) IsProjectMember(projectID, studentID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.acceptedIn(projectID, studentID), nil
}

// ApplicationTx; the store mutex is already held.

type fakeTx struct{ *fakeStore }

func (t fakeTx) LockSeat(roleID uint) (*domain.Project, *domain.Role, error) {
	r, ok := t.roles[roleID]
	if !ok {
		return nil, nil, gorm.ErrRecordNotFound
	}
	p, ok := t.projects[r.ProjectID]
	if !ok {
		return nil, nil, gorm.ErrRecordNotFound
	}
	return &p, &r, nil
}

func (t fakeTx) FindApplication(applicationID uint) (*domain.RoleApplication, error) {
	a, ok := t.apps[applicationID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (t fakeTx) LockApplication(applicationID uint) (*domain.RoleApplication, error) {
	return t.FindApplication(applicationID)
}

func (t fakeTx) FindByRoleAndStudent(roleID, studentID uint) (*domain.RoleApplication, error) {
	for _, a := range t.apps {
		if a.RoleID == roleID && a.StudentID == studentID {
			return &a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (t fakeTx) HasAcceptedInProject(projectID, studentID uint) (bool, error) {
	return t.acceptedIn(projectID, studentID), nil
}

func (t fakeTx) Create(app *domain.RoleApplication) error {
	for _, a := range t.apps {
		if a.RoleID == app.RoleID && a.StudentID == app.StudentID {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uidx_role_application_role_student"}
		}
	}
	app.ID = t.id()
	t.apps[app.ID] = *app
	return nil
}

func (t fakeTx) Reopen(applicationID uint, motivation string, at time.Time) error {
	a, ok := t.apps[applicationID]
	if !ok || !a.Status.Reopenable() {
		return gorm.ErrRecordNotFound
	}
	a.Motivation = motivation
	a.Status = domain.ApplicationStatusPending
	a.UpdatedAt = at
	t.apps[a.ID] = a
	return nil
}

func (t fakeTx) Transition(applicationID uint, from, to domain.ApplicationStatus, at time.Time) (bool, error) {
	a, ok := t.apps[applicationID]
	if !ok || a.Status != from {
		return false, nil
	}
	a.Status = to
	a.UpdatedAt = at
	t.apps[a.ID] = a
	return true, nil
}

func (t fakeTx) TakeSeat(roleID uint) (*domain.Role, error) {
	if t.failTakeSeat {
		return nil, errStorage
	}
	r, ok := t.roles[roleID]
	if !ok || r.JoinNum >= r.LimitNum {
		return nil, repository.ErrNoSeat
	}
	r.JoinNum++
	if r.JoinNum >= r.LimitNum {
		r.Status = domain.RoleStatusCompleted
	}
	t.roles[r.ID] = r
	return &r, nil
}

// RoleRepository

type fakeRoles struct{ *fakeStore }

var _ repository.RoleRepository = fakeRoles{}

func (f fakeRoles) Create(role *domain.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.roles {
		if r.ProjectID == role.ProjectID && r.Name == role.Name {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uidx_role_project_name"}
		}
	}
	role.ID = f.id()
	f.roles[role.ID] = *role
	return nil
}

func (f fakeRoles) FindByID(roleID uint) (*domain.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.roles[roleID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (f fakeRoles) ListByProject(projectID uint) ([]domain.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Role
	for _, r := range f.roles {
		if r.ProjectID == projectID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeRoles) Update(roleID uint, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.roles[roleID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if limit, ok := fields["limit_num"].(int); ok && r.JoinNum > limit {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			r.Name = v.(string)
		case "task_desc":
			r.TaskDesc = v.(string)
		case "limit_num":
			r.LimitNum = v.(int)
		case "status":
			r.Status = v.(domain.RoleStatus)
		}
	}
	f.roles[roleID] = r
	return nil
}

func (f fakeRoles) IsOwnedBy(roleID uint, publisherID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.roles[roleID]
	if !ok {
		return false, nil
	}
	return f.projects[r.ProjectID].PublisherID == publisherID, nil
}

// ProjectRepository

type fakeProjects struct{ *fakeStore }

var _ repository.ProjectRepository = fakeProjects{}

func (f fakeProjects) Create(project *domain.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	project.ID = f.id()
	if project.PublishedAt.IsZero() {
		project.PublishedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	f.projects[project.ID] = *project
	return nil
}

func (f fakeProjects) FindByID(projectID uint) (*domain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[projectID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (f fakeProjects) ListByPublisher(publisherID uint, status domain.ProjectStatus) ([]domain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Project
	for _, p := range f.projects {
		if p.PublisherID == publisherID && (status == "" || p.Status == status) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f fakeProjects) ListPublic(q string) ([]domain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Project
	for _, p := range f.projects {
		if p.Status == domain.ProjectStatusDraft {
			continue
		}
		if q != "" && !strings.Contains(p.Name+p.Description+p.Company, q) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f fakeProjects) Update(projectID uint, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[projectID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			p.Name = v.(string)
		case "description":
			p.Description = v.(string)
		case "company":
			p.Company = v.(string)
		case "status":
			p.Status = v.(domain.ProjectStatus)
		case "result_url":
			p.ResultURL = v.(string)
		}
	}
	f.projects[projectID] = p
	return nil
}

// UserRepository and SessionRepository

type fakeUsers struct{ *fakeStore }

var _ repository.UserRepository = fakeUsers{}

func (f fakeUsers) CreateUser(user *domain.User) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == user.Username {
			return nil, &pgconn.PgError{Code: "23505", ConstraintName: "idx_user_username"}
		}
	}
	user.ID = f.id()
	if user.Status == "" {
		user.Status = domain.UserStatusActive
	}
	f.users[user.ID] = *user
	return user, nil
}

func (f fakeUsers) FindUserByUsername(username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeUsers) FindUserById(userID uint) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (f fakeUsers) TouchLastLogin(userID uint, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[userID]
	u.LastLogin = &at
	f.users[userID] = u
	return nil
}

func (f fakeUsers) CountUsers() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

type fakeSessions struct{ *fakeStore }

var _ repository.SessionRepository = fakeSessions{}

func (f fakeSessions) CreateToken(token string, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = userID
	return nil
}

func (f fakeSessions) FindUserByToken(token string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.tokens[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (f fakeSessions) DeleteToken(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
	return nil
}

// recordingProducer captures published events.
type recordingProducer struct {
	mu       sync.Mutex
	messages [][]byte
	err      error
}

func (p *recordingProducer) PublishMessage(key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, value)
	return p.err
}
