package masterdata

import (
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
	"github.com/vladislavdragonenkov/mdm/internal/metrics"
)

// Имена workflow в метриках и логах.
const (
	workflowList   = "list"
	workflowCreate = "create"
	workflowUpdate = "update"
	workflowFlag   = "flag"
)

// Options задаёт необязательные зависимости оркестратора.
type Options struct {
	Logger    *log.Entry
	Metrics   *metrics.WorkflowMetrics
	Directory domain.Directory
	ChangeLog domain.ChangeLog
	Policy    UniquenessPolicy
}

// Option настраивает Orchestrator.
type Option func(*Options)

// WithLogger задаёт logger оркестратора.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) { opts.Logger = logger }
}

// WithMetrics задаёт метрики workflow.
func WithMetrics(m *metrics.WorkflowMetrics) Option {
	return func(opts *Options) { opts.Metrics = m }
}

// WithDirectory задаёт справочник пользователей для административной
// рассылки.
func WithDirectory(d domain.Directory) Option {
	return func(opts *Options) { opts.Directory = d }
}

// WithChangeLog задаёт журнал аудита мутаций.
func WithChangeLog(c domain.ChangeLog) Option {
	return func(opts *Options) { opts.ChangeLog = c }
}

// WithUniquenessPolicy задаёт поведение при ошибке проверки
// уникальности.
func WithUniquenessPolicy(p UniquenessPolicy) Option {
	return func(opts *Options) { opts.Policy = p }
}

// Orchestrator выполняет workflow-ы мутаций одной сущности
// справочника: list/search, create, update и flag-update. Все
// проверки и мутации строго упорядочены внутри одного вызова;
// уведомление и обновление списка после успешной мутации выполняются
// в фоне и не влияют на уже возвращённый результат.
//
// Оркестратор не сериализует конкурентные вызовы своих workflow:
// предполагается один мутационный workflow за раз на экземпляр.
type Orchestrator[T any] struct {
	desc      Descriptor[T]
	repo      domain.Repository[T]
	notifier  domain.Notifier
	session   domain.Session
	directory domain.Directory
	changelog domain.ChangeLog
	state     *State[T]
	logger    *log.Entry
	metrics   *metrics.WorkflowMetrics
	policy    UniquenessPolicy

	mu        sync.Mutex
	lastQuery string
	lastScope domain.Scope

	background sync.WaitGroup
}

// NewOrchestrator создаёт оркестратор сущности поверх её репозитория.
func NewOrchestrator[T any](
	desc Descriptor[T],
	repo domain.Repository[T],
	notifier domain.Notifier,
	session domain.Session,
	options ...Option,
) *Orchestrator[T] {
	opts := Options{Policy: UniquenessLenient}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "masterdata-"+desc.Label)
	}

	return &Orchestrator[T]{
		desc:      desc,
		repo:      repo,
		notifier:  notifier,
		session:   session,
		directory: opts.Directory,
		changelog: opts.ChangeLog,
		state:     NewState[T](),
		logger:    logger,
		metrics:   opts.Metrics,
		policy:    opts.Policy,
	}
}

// State возвращает наблюдаемое состояние оркестратора.
func (o *Orchestrator[T]) State() *State[T] { return o.state }

// List выполняет поиск по справочнику и замещает наблюдаемый список.
func (o *Orchestrator[T]) List(query string, scope domain.Scope) ([]T, error) {
	start := time.Now()
	o.recordStarted(workflowList)
	o.state.begin()

	o.mu.Lock()
	o.lastQuery, o.lastScope = query, scope
	o.mu.Unlock()

	items, err := o.repo.Search(query, scope)
	if err != nil {
		wrapped := domain.WrapRepository("search "+o.desc.Label, err)
		o.state.finish(wrapped.Error())
		o.recordFailed(workflowList, start)
		return nil, wrapped
	}

	o.state.setItems(items)
	o.state.finish("")
	o.recordSucceeded(workflowList, start)
	return items, nil
}

// Create создаёт запись: проверка уникальности, снимок аудитории до
// удалённого вызова, создание, затем фоновое уведомление и refresh.
func (o *Orchestrator[T]) Create(rec T, message string) (T, error) {
	start := time.Now()
	o.recordStarted(workflowCreate)
	o.state.begin()

	var zero T

	if err := o.validate(rec); err != nil {
		return zero, o.fail(workflowCreate, start, err)
	}

	exists, err := checkUnique(o.repo, o.desc.Key(rec), o.policy, o.logger)
	if err != nil {
		return zero, o.fail(workflowCreate, start, err)
	}
	if exists {
		conflict := domain.NewConflictError(o.desc.Label, o.desc.Key(rec).Display())
		return zero, o.fail(workflowCreate, start, conflict)
	}

	// Снимок сессии и аудитории до удалённого вызова: роль и
	// идентичность не должны плыть, пока идёт медленный create.
	actor := o.session.CurrentUserID()
	audience := o.buildAudience(o.desc.Owner(rec), 0)

	created, err := o.repo.Create(rec)
	if err != nil {
		return zero, o.fail(workflowCreate, start, domain.WrapRepository("create "+o.desc.Label, err))
	}

	// Идентификатор уведомления — серверный id из ответа create.
	o.dispatchBackground(o.desc.ServerID(created), audience, message, domain.ChangeActionCreate, actor)

	o.state.finish("")
	o.recordSucceeded(workflowCreate, start)
	return created, nil
}

// Update обновляет запись. Прежний владелец извлекается из текущей
// версии записи, чтобы при передаче клиента уведомить обе стороны;
// проверка уникальности исключает собственный идентификатор записи.
func (o *Orchestrator[T]) Update(rec T, message string) (T, error) {
	start := time.Now()
	o.recordStarted(workflowUpdate)
	o.state.begin()

	var zero T

	serverID := o.desc.ServerID(rec)
	if !domain.Synced(serverID) {
		return zero, o.fail(workflowUpdate, start, domain.ErrNotSynced)
	}

	if err := o.validate(rec); err != nil {
		return zero, o.fail(workflowUpdate, start, err)
	}

	prior, err := o.repo.GetByID(serverID)
	if err != nil {
		return zero, o.fail(workflowUpdate, start, domain.WrapRepository("load "+o.desc.Label, err))
	}
	oldOwner := o.desc.Owner(prior)

	key := o.desc.Key(rec)
	key.ExcludeID = serverID
	exists, err := checkUnique(o.repo, key, o.policy, o.logger)
	if err != nil {
		return zero, o.fail(workflowUpdate, start, err)
	}
	if exists {
		conflict := domain.NewConflictError(o.desc.Label, key.Display())
		return zero, o.fail(workflowUpdate, start, conflict)
	}

	actor := o.session.CurrentUserID()
	audience := o.buildAudience(o.desc.Owner(rec), oldOwner)

	updated, err := o.repo.Update(rec)
	if err != nil {
		return zero, o.fail(workflowUpdate, start, domain.WrapRepository("update "+o.desc.Label, err))
	}

	// Для update серверный id известен вызывающему заранее.
	o.dispatchBackground(serverID, audience, message, domain.ChangeActionUpdate, actor)

	o.state.finish("")
	o.recordSucceeded(workflowUpdate, start)
	return updated, nil
}

// SetActive меняет только флаг активности записи. Ключ уникальности
// не меняется, поэтому проверка пропускается; хвост уведомления и
// refresh совпадает с update.
func (o *Orchestrator[T]) SetActive(serverID int64, active bool, message string) error {
	start := time.Now()
	o.recordStarted(workflowFlag)
	o.state.begin()

	if !domain.Synced(serverID) {
		return o.fail(workflowFlag, start, domain.ErrNotSynced)
	}

	prior, err := o.repo.GetByID(serverID)
	if err != nil {
		return o.fail(workflowFlag, start, domain.WrapRepository("load "+o.desc.Label, err))
	}

	actor := o.session.CurrentUserID()
	audience := o.buildAudience(o.desc.Owner(prior), 0)

	if err := o.repo.UpdateFlag(serverID, active); err != nil {
		return o.fail(workflowFlag, start, domain.WrapRepository("update "+o.desc.Label+" flag", err))
	}

	o.dispatchBackground(serverID, audience, message, domain.ChangeActionFlag, actor)

	o.state.finish("")
	o.recordSucceeded(workflowFlag, start)
	return nil
}

// buildAudience собирает аудиторию уведомления из снимка сессии и,
// для сущностей с административной видимостью, списка администраторов.
// Ошибка справочника пользователей не блокирует мутацию: аудитория
// просто остаётся без администраторов.
func (o *Orchestrator[T]) buildAudience(newOwner, oldOwner int64) []int64 {
	var admins []int64
	if o.desc.IncludeAdmins && o.directory != nil {
		users, err := o.directory.ListByRole(domain.RoleAdministrator)
		if err != nil {
			o.logger.WithError(err).Warn("failed to list administrators for audience")
		}
		for _, u := range users {
			admins = append(admins, u.ServerID)
		}
	}

	return BuildAudience(AudienceInput{
		ActorID:       o.session.CurrentUserID(),
		ActorRole:     o.session.CurrentRole(),
		NewOwner:      newOwner,
		OldOwner:      oldOwner,
		Admins:        admins,
		IncludeAdmins: o.desc.IncludeAdmins,
	})
}

// dispatchBackground запускает fire-and-forget хвост успешной
// мутации: уведомление, запись в журнал изменений и обновление
// наблюдаемого списка. Ошибки фоновых задач только логируются и
// никогда не переписывают уже возвращённый результат.
func (o *Orchestrator[T]) dispatchBackground(
	recordID int64,
	audience []int64,
	message string,
	action domain.ChangeAction,
	actor int64,
) {
	o.background.Add(1)
	go func() {
		defer o.background.Done()

		refs := []domain.ChangeRef{{Table: o.desc.Table, RecordID: recordID}}
		if err := o.notifier.Send(audience, refs, message); err != nil {
			o.logger.WithError(err).WithFields(log.Fields{
				"table":     o.desc.Table,
				"record_id": recordID,
			}).Warn("failed to enqueue change notification")
		} else if o.metrics != nil {
			o.metrics.RecordNotificationEnqueued(o.desc.Label)
		}

		if o.changelog != nil {
			entry := domain.ChangeLogEntry{
				ID:       uuid.NewString(),
				Table:    o.desc.Table,
				RecordID: recordID,
				Action:   action,
				ActorID:  actor,
				Message:  message,
				At:       time.Now().UTC(),
			}
			if err := o.changelog.Append(entry); err != nil {
				o.logger.WithError(err).WithField("record_id", recordID).
					Warn("failed to append changelog entry")
			} else if o.metrics != nil {
				o.metrics.RecordChangelogEntry()
			}
		}

		o.refresh()
	}()
}

// validate прогоняет проверку обязательных полей дескриптора.
func (o *Orchestrator[T]) validate(rec T) error {
	if o.desc.Validate == nil {
		return nil
	}
	return o.desc.Validate(rec)
}

// Refresh синхронно повторяет последний поисковый запрос. Используется
// при получении уведомления об изменении справочника извне.
func (o *Orchestrator[T]) Refresh() {
	o.refresh()
}

// refresh повторяет последний поисковый запрос и замещает
// наблюдаемый список. Ошибка refresh не трогает errorMessage:
// результат workflow уже доставлен вызывающему.
func (o *Orchestrator[T]) refresh() {
	o.mu.Lock()
	query, scope := o.lastQuery, o.lastScope
	o.mu.Unlock()

	items, err := o.repo.Search(query, scope)
	if err != nil {
		o.logger.WithError(err).Warn("background list refresh failed")
		if o.metrics != nil {
			o.metrics.RecordRefreshFailure(o.desc.Label)
		}
		return
	}
	o.state.setItems(items)
}

// fail фиксирует ошибку workflow в наблюдаемом состоянии и метриках.
func (o *Orchestrator[T]) fail(workflow string, start time.Time, err error) error {
	o.state.finish(err.Error())
	o.recordFailed(workflow, start)
	return err
}

func (o *Orchestrator[T]) recordStarted(workflow string) {
	if o.metrics != nil {
		o.metrics.RecordStarted(o.desc.Label, workflow)
	}
}

func (o *Orchestrator[T]) recordSucceeded(workflow string, start time.Time) {
	if o.metrics != nil {
		o.metrics.RecordSucceeded(o.desc.Label, workflow, time.Since(start))
	}
}

func (o *Orchestrator[T]) recordFailed(workflow string, start time.Time) {
	if o.metrics != nil {
		o.metrics.RecordFailed(o.desc.Label, workflow, time.Since(start))
	}
}

// waitBackground дожидается завершения фоновых задач; используется в
// тестах для детерминизма.
func (o *Orchestrator[T]) waitBackground() {
	o.background.Wait()
}
