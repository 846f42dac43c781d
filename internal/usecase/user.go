package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/totegamma/liveboard"
	"github.com/totegamma/liveboard/internal/domain"
)

type UserUsecase struct {
	repo UserRepository
}

func NewUserUsecase(repo UserRepository) *UserUsecase {
	return &UserUsecase{repo: repo}
}

func (uc *UserUsecase) Register(ctx context.Context, username, password string) (liveboard.User, error) {
	ctx, span := tracer.Start(ctx, "User.Usecase.Register")
	defer span.End()

	if strings.TrimSpace(username) == "" || password == "" {
		return liveboard.User{}, domain.ValidationError{Message: "Username and password are required"}
	}

	if _, err := uc.repo.GetByUsername(ctx, username); err == nil {
		return liveboard.User{}, domain.ValidationError{Message: "User already exists"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		return liveboard.User{}, err
	}

	account := domain.Account{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := uc.repo.Create(ctx, account); err != nil {
		span.RecordError(err)
		return liveboard.User{}, err
	}

	return liveboard.User{ID: account.ID, Username: account.Username}, nil
}

func (uc *UserUsecase) Login(ctx context.Context, username, password string) (liveboard.User, error) {
	ctx, span := tracer.Start(ctx, "User.Usecase.Login")
	defer span.End()

	if strings.TrimSpace(username) == "" || password == "" {
		return liveboard.User{}, domain.ValidationError{Message: "Username and password are required"}
	}

	account, err := uc.repo.GetByUsername(ctx, username)
	if err != nil {
		return liveboard.User{}, domain.AuthenticationError{Message: "Invalid credentials"}
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return liveboard.User{}, domain.AuthenticationError{Message: "Invalid credentials"}
	}

	return liveboard.User{ID: account.ID, Username: account.Username}, nil
}
