// File: internal/engine/mocks_test.go
package engine

import (
	"context"
	"sync"
	"time"

	"chatwarden/internal/domain"
	"chatwarden/internal/domain/model"
	"chatwarden/internal/domain/ports/lock"
	"chatwarden/internal/domain/ports/remote"
	"chatwarden/internal/domain/ports/repository"
)

// memLocker always grants the lock, standing in for redis.NoopLocker in
// engine tests that don't need infra/redis.
type memLocker struct{}

var _ lock.Locker = memLocker{}

func (memLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	return "tok", true, nil
}
func (memLocker) Unlock(ctx context.Context, key, token string) error { return nil }

// store is the shared in-memory backing for the mem*Repo fakes below: one
// map set per table, guarded by a single mutex, the way the teacher's
// usecase test doubles back small per-entity maps.
type store struct {
	mu sync.Mutex

	owners    map[int64]*model.Owner
	bots      map[int64]*model.Bot
	chats     map[int64]*model.Chat
	employees map[int64]*model.Employee
	links     map[[2]int64]*model.ChatEmployee

	nextChatID     int64
	nextEmployeeID int64
}

func newStore() *store {
	return &store{
		owners:    make(map[int64]*model.Owner),
		bots:      make(map[int64]*model.Bot),
		chats:     make(map[int64]*model.Chat),
		employees: make(map[int64]*model.Employee),
		links:     make(map[[2]int64]*model.ChatEmployee),
	}
}

type memOwnerRepo struct{ s *store }

var _ repository.OwnerRepository = memOwnerRepo{}

func (r memOwnerRepo) ActiveOwners(ctx context.Context, tx repository.Tx) ([]*model.Owner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Owner
	for _, o := range r.s.owners {
		if o.IsActive {
			out = append(out, o)
		}
	}
	return out, nil
}

type memBotRepo struct{ s *store }

var _ repository.BotRepository = memBotRepo{}

func (r memBotRepo) ActiveByOwner(ctx context.Context, tx repository.Tx, ownerID int64) ([]*model.Bot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Bot
	for _, b := range r.s.bots {
		if b.UserID == ownerID && b.IsActive {
			out = append(out, b)
		}
	}
	return out, nil
}

type memChatRepo struct{ s *store }

var _ repository.ChatRepository = memChatRepo{}

func (r memChatRepo) ByOwner(ctx context.Context, tx repository.Tx, ownerID int64) ([]*model.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Chat
	for _, c := range r.s.chats {
		if c.UserID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r memChatRepo) ByBotAndTelegramID(ctx context.Context, tx repository.Tx, botID, telegramChatID int64) (*model.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.chats {
		if c.BotID == botID && c.TelegramChatID == telegramChatID {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memChatRepo) Create(ctx context.Context, tx repository.Tx, chat *model.Chat) (*model.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.chats {
		if c.BotID == chat.BotID && c.TelegramChatID == chat.TelegramChatID {
			return c, nil
		}
	}
	r.s.nextChatID++
	cp := *chat
	cp.ChatID = r.s.nextChatID
	r.s.chats[cp.ChatID] = &cp
	return &cp, nil
}

func (r memChatRepo) SetType(ctx context.Context, tx repository.Tx, chatID, ownerID int64, typeID model.ChatType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.chats[chatID]
	if !ok || c.UserID != ownerID {
		return domain.ErrNotFound
	}
	c.TypeID = typeID
	return nil
}

func (r memChatRepo) SetStatus(ctx context.Context, tx repository.Tx, chatID, ownerID int64, statusID model.ChatStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.chats[chatID]
	if !ok || c.UserID != ownerID {
		return domain.ErrNotFound
	}
	c.StatusID = statusID
	return nil
}

func (r memChatRepo) SetTypeAndStatus(ctx context.Context, tx repository.Tx, chatID, ownerID int64, typeID model.ChatType, statusID model.ChatStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.chats[chatID]
	if !ok || c.UserID != ownerID {
		return domain.ErrNotFound
	}
	c.TypeID = typeID
	c.StatusID = statusID
	return nil
}

func (r memChatRepo) UpdateTitle(ctx context.Context, tx repository.Tx, chatID, ownerID int64, title []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.chats[chatID]
	if !ok || c.UserID != ownerID {
		return domain.ErrNotFound
	}
	c.Title = title
	return nil
}

func (r memChatRepo) UpdateCounts(ctx context.Context, tx repository.Tx, chatID, ownerID int64, userNum, unknownUser int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.chats[chatID]
	if !ok || c.UserID != ownerID {
		return domain.ErrNotFound
	}
	c.UserNum = userNum
	c.UnknownUser = unknownUser
	return nil
}

type memEmployeeRepo struct{ s *store }

var _ repository.EmployeeRepository = memEmployeeRepo{}

func (r memEmployeeRepo) ActiveByOwner(ctx context.Context, tx repository.Tx, ownerID int64) ([]*model.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Employee
	for _, e := range r.s.employees {
		if e.UserID == ownerID && e.IsActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r memEmployeeRepo) ByID(ctx context.Context, tx repository.Tx, ownerID, employeeID int64) (*model.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[employeeID]
	if !ok || e.UserID != ownerID {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (r memEmployeeRepo) ByTelegramUserID(ctx context.Context, tx repository.Tx, ownerID, telegramUserID int64) (*model.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.employees {
		if e.UserID == ownerID && e.TelegramUserID != nil && *e.TelegramUserID == telegramUserID {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memEmployeeRepo) ByTelegramUsername(ctx context.Context, tx repository.Tx, ownerID int64, username string) (*model.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.employees {
		if e.UserID == ownerID && e.MatchesUsername(username) {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memEmployeeRepo) Create(ctx context.Context, tx repository.Tx, e *model.Employee) (*model.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextEmployeeID++
	cp := *e
	cp.EmployeeID = r.s.nextEmployeeID
	r.s.employees[cp.EmployeeID] = &cp
	return &cp, nil
}

func (r memEmployeeRepo) Update(ctx context.Context, tx repository.Tx, e *model.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.employees[e.EmployeeID]; !ok {
		return domain.ErrNotFound
	}
	cp := *e
	r.s.employees[e.EmployeeID] = &cp
	return nil
}

type memLinkRepo struct{ s *store }

var _ repository.ChatEmployeeRepository = memLinkRepo{}

func (r memLinkRepo) ByChat(ctx context.Context, tx repository.Tx, chatID int64) ([]*model.ChatEmployee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.ChatEmployee
	for k, l := range r.s.links {
		if k[0] == chatID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r memLinkRepo) Get(ctx context.Context, tx repository.Tx, chatID, employeeID int64) (*model.ChatEmployee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.links[[2]int64{chatID, employeeID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return l, nil
}

func (r memLinkRepo) Upsert(ctx context.Context, tx repository.Tx, ce *model.ChatEmployee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *ce
	r.s.links[[2]int64{ce.ChatID, ce.EmployeeID}] = &cp
	return nil
}

func (r memLinkRepo) Deactivate(ctx context.Context, tx repository.Tx, chatID, employeeID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.links[[2]int64{chatID, employeeID}]
	if !ok {
		return domain.ErrNotFound
	}
	l.IsActive = false
	return nil
}

func (r memLinkRepo) Delete(ctx context.Context, tx repository.Tx, chatID, employeeID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.links, [2]int64{chatID, employeeID})
	return nil
}

type memTxManager struct{}

var _ repository.TransactionManager = memTxManager{}

func (memTxManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

// fakeClient is a scripted remote.Client double. Each method reads from a
// canned response and records its own calls for assertions.
type fakeClient struct {
	mu sync.Mutex

	chatInfo   remote.ChatInfo
	chatStatus remote.Status

	admins       []remote.Member
	members      map[int64]remote.Member
	memberStatus map[int64]remote.Status
	membersCount int

	updates    []model.UpdateEvent
	nextOffset int

	kicked []int64
	sent   []string
}

var _ remote.Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{
		chatStatus:   remote.StatusOK,
		members:      make(map[int64]remote.Member),
		memberStatus: make(map[int64]remote.Status),
	}
}

func (c *fakeClient) GetChat(ctx context.Context, telegramChatID int64) (remote.ChatInfo, remote.Status, error) {
	return c.chatInfo, c.chatStatus, nil
}

func (c *fakeClient) GetChatAdministrators(ctx context.Context, telegramChatID int64) ([]remote.Member, remote.Status, error) {
	return c.admins, remote.StatusOK, nil
}

func (c *fakeClient) GetChatMember(ctx context.Context, telegramChatID, telegramUserID int64) (remote.Member, remote.Status, error) {
	if st, ok := c.memberStatus[telegramUserID]; ok && st != remote.StatusOK {
		return remote.Member{}, st, nil
	}
	if m, ok := c.members[telegramUserID]; ok {
		return m, remote.StatusOK, nil
	}
	return remote.Member{}, remote.StatusNotFound400, nil
}

func (c *fakeClient) GetChatMembersCount(ctx context.Context, telegramChatID int64) (int, remote.Status, error) {
	return c.membersCount, remote.StatusOK, nil
}

func (c *fakeClient) GetUpdates(ctx context.Context, offset int, bootstrap bool) ([]model.UpdateEvent, int, remote.Status, error) {
	return c.updates, c.nextOffset, remote.StatusOK, nil
}

func (c *fakeClient) SendMessage(ctx context.Context, telegramChatID int64, text string) (remote.Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, text)
	return remote.StatusOK, nil
}

func (c *fakeClient) KickChatMember(ctx context.Context, telegramChatID, telegramUserID int64) (remote.Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kicked = append(c.kicked, telegramUserID)
	return remote.StatusOK, nil
}
