package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"studyplanner/internal/model"
	"studyplanner/internal/repository"
)

// ReminderThreshold is one of the firing points tracked per task.
type ReminderThreshold string

const (
	ThresholdOneHour    ReminderThreshold = "1hr"
	ThresholdTenMinutes ReminderThreshold = "10min"
	ThresholdOverdue    ReminderThreshold = "overdue"
)

// thresholds in evaluation order. Each window is checked independently, so a
// coarse scan cadence can legitimately fire the 1-hour and 10-minute
// reminders in the same pass.
var thresholds = [...]ReminderThreshold{ThresholdOneHour, ThresholdTenMinutes, ThresholdOverdue}

// Label is the human-readable reminder name used in notification titles.
func (t ReminderThreshold) Label() string {
	switch t {
	case ThresholdOneHour:
		return "1 Hour Reminder"
	case ThresholdTenMinutes:
		return "10 Minute Reminder"
	default:
		return "Task Overdue!"
	}
}

// entered reports whether the threshold window contains the given
// time-until-due.
func (t ReminderThreshold) entered(untilDue time.Duration) bool {
	switch t {
	case ThresholdOneHour:
		return 0 < untilDue && untilDue <= time.Hour
	case ThresholdTenMinutes:
		return 0 < untilDue && untilDue <= 10*time.Minute
	default:
		return untilDue < 0
	}
}

// Notifier shows a local desktop notification.
type Notifier interface {
	Notify(title, message string) error
}

// EmailSender delivers mail. Sender identifies the from-address so
// self-addressed deliveries can be skipped.
type EmailSender interface {
	Sender() string
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender delivers text messages. Sender identifies the sending number.
type SMSSender interface {
	Sender() string
	SendSMS(ctx context.Context, to, body string) error
}

// ChatSender delivers a message to a chat destination (Telegram).
type ChatSender interface {
	SendChat(ctx context.Context, chatID int64, text string) error
}

// ReminderDispatcher scans the active user's tasks on a fixed cadence and
// fires each (task, threshold) reminder at most once. Remote deliveries run
// on a bounded worker pool so a slow gateway never stalls the scan loop; a
// per-delivery timeout is the only bound on a stuck call.
type ReminderDispatcher struct {
	tasks    *repository.TaskRepository
	notifier Notifier
	email    EmailSender
	sms      SMSSender
	chat     ChatSender
	timeout  time.Duration

	mu     sync.Mutex
	active *model.User
	sent   map[string]struct{}

	jobs chan func(context.Context)
	wg   sync.WaitGroup
	once sync.Once
}

// NewReminderDispatcher builds a dispatcher with the given delivery sinks.
// Any sink may be nil, which disables that channel.
func NewReminderDispatcher(tasks *repository.TaskRepository, notifier Notifier, email EmailSender, sms SMSSender, chat ChatSender, workers int, timeout time.Duration) *ReminderDispatcher {
	if workers <= 0 {
		workers = 1
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	d := &ReminderDispatcher{
		tasks:    tasks,
		notifier: notifier,
		email:    email,
		sms:      sms,
		chat:     chat,
		timeout:  timeout,
		sent:     make(map[string]struct{}),
		jobs:     make(chan func(context.Context), 64),
	}

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

func (d *ReminderDispatcher) worker() {
	defer d.wg.Done()
	for job := range d.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		job(ctx)
		cancel()
	}
}

// Shutdown drains in-flight deliveries and stops the workers.
func (d *ReminderDispatcher) Shutdown() {
	d.once.Do(func() { close(d.jobs) })
	d.wg.Wait()
}

// SetActiveUser switches the session. All per-task sent state belongs to the
// previous session and is dropped.
func (d *ReminderDispatcher) SetActiveUser(user *model.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active = user
	d.sent = make(map[string]struct{})
}

func sentKey(taskID string, threshold ReminderThreshold) string {
	return taskID + "|" + string(threshold)
}

// Scan evaluates every incomplete task of the active user against all
// reminder thresholds at the given instant. Scans are serialized; a second
// call waits for the first to finish.
func (d *ReminderDispatcher) Scan(now time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active == nil {
		return nil
	}
	user := *d.active

	tasks, err := d.tasks.Load(user.Username)
	if err != nil {
		// A corrupt file already degraded to an empty collection; nothing
		// to remind about this pass.
		log.Printf("reminder: load tasks: %v", err)
		return nil
	}

	dirty := false
	for i := range tasks {
		task := tasks[i]
		if task.Completed {
			continue
		}
		due, ok := task.DueAt()
		if !ok {
			continue
		}

		untilDue := due.Sub(now)
		for _, th := range thresholds {
			key := sentKey(task.ID, th)
			if _, done := d.sent[key]; done {
				continue
			}
			if !th.entered(untilDue) {
				continue
			}
			d.sent[key] = struct{}{}
			d.fire(user, task, th)
			if !tasks[i].Reminded {
				tasks[i].Reminded = true
				dirty = true
			}
		}
	}

	if dirty {
		if err := d.tasks.Save(user.Username, tasks); err != nil {
			log.Printf("reminder: persist reminded flags: %v", err)
		}
	}
	return nil
}

// fire emits one reminder event: always the local notification, plus any
// configured remote channels. Remote failures are logged and swallowed.
func (d *ReminderDispatcher) fire(user model.User, task model.Task, th ReminderThreshold) {
	title, message := reminderText(task, th)
	if d.notifier != nil {
		if err := d.notifier.Notify(title, message); err != nil {
			log.Printf("reminder: notify: %v", err)
		}
	}
	log.Printf("reminder: fired %s for task %q", th, task.Name)

	d.dispatchRemote(user, task, th.Label())
}

// dispatchRemote queues deliveries for every configured destination that is
// not the sender itself. An unset destination means the channel is disabled
// for this user, not an error.
func (d *ReminderDispatcher) dispatchRemote(user model.User, task model.Task, label string) {
	if d.email != nil && user.Email != "" && user.Email != d.email.Sender() {
		to := user.Email
		subject := fmt.Sprintf("Task Reminder: %s - %s", label, task.Name)
		body := emailBody(user.Username, task)
		d.enqueue(func(ctx context.Context) {
			if err := d.email.SendEmail(ctx, to, subject, body); err != nil {
				log.Printf("reminder: send email to %s: %v", to, err)
			}
		})
	}

	if d.sms != nil && user.PhoneNumber != "" && user.PhoneNumber != d.sms.Sender() {
		to := user.PhoneNumber
		body := smsBody(task, label)
		d.enqueue(func(ctx context.Context) {
			if err := d.sms.SendSMS(ctx, to, body); err != nil {
				log.Printf("reminder: send sms to %s: %v", to, err)
			}
		})
	}

	if d.chat != nil && user.TelegramChat != 0 {
		chatID := user.TelegramChat
		text := fmt.Sprintf("%s: %s (due %s, priority %s)", label, task.Name, task.DueDate, task.Priority)
		d.enqueue(func(ctx context.Context) {
			if err := d.chat.SendChat(ctx, chatID, text); err != nil {
				log.Printf("reminder: send telegram to %d: %v", chatID, err)
			}
		})
	}
}

// enqueue hands a delivery to the pool. When the pool is saturated the
// delivery is dropped with a log line rather than blocking the scan.
func (d *ReminderDispatcher) enqueue(job func(context.Context)) {
	select {
	case d.jobs <- job:
	default:
		log.Printf("reminder: delivery queue full, dropping")
	}
}

// AnnounceCompletion sends the completion congratulation through the same
// channels as reminders.
func (d *ReminderDispatcher) AnnounceCompletion(user model.User, task model.Task) {
	if d.notifier != nil {
		title := fmt.Sprintf("Task Completed: %s", task.Name)
		if err := d.notifier.Notify(title, "Great job! You've completed this task."); err != nil {
			log.Printf("reminder: notify: %v", err)
		}
	}

	if d.sms != nil && user.PhoneNumber != "" && user.PhoneNumber != d.sms.Sender() {
		to := user.PhoneNumber
		body := smsBody(task, "Task Completed")
		d.enqueue(func(ctx context.Context) {
			if err := d.sms.SendSMS(ctx, to, body); err != nil {
				log.Printf("reminder: send sms to %s: %v", to, err)
			}
		})
	}
}

// Summary renders a digest of the active user's task list for the periodic
// report job.
func (d *ReminderDispatcher) Summary(now time.Time) (string, error) {
	d.mu.Lock()
	user := d.active
	d.mu.Unlock()
	if user == nil {
		return "", nil
	}

	tasks, err := d.tasks.Load(user.Username)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Tasks for %s on %s\n", user.Username, now.Format("2006-01-02")))
	for _, ct := range ClassifyAndSort(tasks, now) {
		mark := " "
		if ct.Task.Completed {
			mark = "x"
		}
		line := fmt.Sprintf("[%s] %s | Due: %s | Priority: %s", mark, ct.Task.Name, ct.Task.DueDate, ct.Task.Priority)
		if label := TimeLeftLabel(ct.Task, now); label != "" {
			line += " (" + label + ")"
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String()), nil
}

func reminderText(task model.Task, th ReminderThreshold) (title, message string) {
	switch th {
	case ThresholdOneHour:
		return fmt.Sprintf("1 Hour Reminder: %s", task.Name),
			fmt.Sprintf("Task due at %s. Priority: %s", task.DueDate, task.Priority)
	case ThresholdTenMinutes:
		return fmt.Sprintf("10 Minute Reminder: %s", task.Name),
			fmt.Sprintf("Task due soon at %s", task.DueDate)
	default:
		return fmt.Sprintf("Task Overdue: %s", task.Name),
			"This task is overdue! Please complete it ASAP"
	}
}

func emailBody(username string, task model.Task) string {
	return fmt.Sprintf("Hi %s,\n\n"+
		"Just a friendly reminder about your task:\n\n"+
		"Task: %s\nDue Date: %s\nDescription: %s\nNext Step: %s\nPriority: %s\n\n"+
		"Don't forget to complete it!\n\nBest,\nYour Task Manager",
		username, task.Name, task.DueDate, task.Description, task.NextStep, task.Priority)
}

func smsBody(task model.Task, label string) string {
	next := task.NextStep
	if len(next) > 50 {
		next = next[:50] + "..."
	}
	return fmt.Sprintf("Task Reminder (%s): %s is due %s. Priority: %s. Next: %s",
		label, task.Name, task.DueDate, task.Priority, next)
}
