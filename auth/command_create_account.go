package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CreateAccountMessage carries the signup fields.
type CreateAccountMessage struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	IsAdmin   bool   `json:"is_admin"`
}

func (e CreateAccountMessage) Type() string { return "account.create" }

// CreateAccountHandler runs the account creation pipeline: normalize,
// validate, hash, persist, post-process. The post-process stage (recording
// the verification token and, for administrator accounts, sending the
// verification email) runs on the dispatcher after the account is committed;
// its failures are logged and never undo the insert.
type CreateAccountHandler struct {
	repo       RepositoryManager
	mailer     *VerificationMailer
	dispatcher *Dispatcher
	logger     Logger
}

func NewCreateAccountHandler(repo RepositoryManager, mailer *VerificationMailer, dispatcher *Dispatcher) *CreateAccountHandler {
	return &CreateAccountHandler{
		repo:       repo,
		mailer:     mailer,
		dispatcher: dispatcher,
		logger:     defLogger{},
	}
}

func (h *CreateAccountHandler) WithLogger(logger Logger) *CreateAccountHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *CreateAccountHandler) Execute(ctx context.Context, event CreateAccountMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account creation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *CreateAccountHandler) execute(ctx context.Context, event CreateAccountMessage) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user := normalizeAccount(event)

	if err := h.validate(user, event.Password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(event.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryValidation {
			return nil, fieldError("password", richErr.Message)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}
	user.Password = hash

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		stored, err := h.repo.Users().CreateTx(ctx, tx, user)
		if err != nil {
			return err
		}
		user = stored
		return nil
	})

	if err != nil {
		if goerrors.Is(err, ErrDuplicateEmail) {
			return nil, fieldError("email", DuplicateEmailMessage)
		}
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "account creation transaction failed")
	}

	if user.WasNew() {
		h.postProcess(user)
	}

	user.Password = ""
	return user, nil
}

// validate runs the constraint table over the normalized fields plus the
// raw password, surfacing a field-keyed validation error.
func (h *CreateAccountHandler) validate(user *User, password string) error {
	fields := map[string]string{
		"firstname": user.FirstName,
		"lastname":  user.LastName,
		"email":     user.Email,
		"password":  password,
	}

	if richErr := goerrors.ValidateWithOzzo(func() error {
		return ValidateAccountFields(fields)
	}, "Invalid signup payload"); richErr != nil {
		return richErr
	}
	return nil
}

// postProcess hands the one-time signup side effects to the dispatcher:
// the verification token is always recorded, the email goes out only for
// administrator accounts. The HTTP response never waits on this.
func (h *CreateAccountHandler) postProcess(user *User) {
	account := *user
	token := uuid.NewString()

	h.dispatcher.Enqueue(func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*30)
		defer cancel()

		if _, err := h.repo.TokenVerifications().Record(ctx, account.ID, token); err != nil {
			h.logger.Error("failed to record verification token", "user_id", account.ID, "error", err)
			return
		}

		if !account.IsAdmin {
			return
		}

		if h.mailer == nil {
			h.logger.Warn("no mailer configured, skipping verification email", "user_id", account.ID)
			return
		}

		if err := h.mailer.SendVerification(ctx, &account, token); err != nil {
			h.logger.Error("failed to send verification email", "user_id", account.ID, "error", err)
		}
	})
}

func normalizeAccount(event CreateAccountMessage) *User {
	return &User{
		FirstName: UpperFirst(strings.TrimSpace(event.FirstName)),
		LastName:  UpperFirst(strings.TrimSpace(event.LastName)),
		Email:     NormalizeEmail(event.Email),
		IsAdmin:   event.IsAdmin,
	}
}

func fieldError(field, message string) error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.Errors{field: errors.New(message)}.Filter()
	}, "Invalid signup payload")
}
