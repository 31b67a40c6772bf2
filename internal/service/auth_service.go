package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/realtime"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput carries self-registration details. TrainerCode is only
// honoured for students.
type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	Level       domain.Level
	TrainerCode string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	Me(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, name, avatarURL string) (*domain.User, error)
	ParseToken(tokenString string) (*Claims, error)
}

// authService implements the AuthService interface.
type authService struct {
	userRepo      repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
	logger        *zap.Logger
	notifier      notifier
	codeGen       func() (string, error)
	now           func() time.Time
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, pub realtime.Publisher, jwtSecret string, jwtExpiration time.Duration, logger *zap.Logger) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		logger:        logger,
		notifier:      newNotifier(pub, logger),
		codeGen:       randomTrainerCode,
		now:           time.Now,
	}
}

// Register handles new user registration. A student registering with a
// trainer code starts with a pending link to that trainer; an unknown code
// fails the whole registration and no account is created.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	// 1. Validate Input
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password cannot be empty", ErrValidation)
	}
	if in.Level != domain.LevelStudent && in.Level != domain.LevelTrainer {
		return nil, ErrInvalidLevel
	}

	// 2. Check if user already exists
	if err := ensureEmailFree(ctx, s.userRepo, in.Email); err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:  in.Name,
		Email: in.Email,
		Level: in.Level,
	}

	// 3. Resolve the trainer code before anything is written
	var trainer *domain.User
	code := strings.ToUpper(strings.TrimSpace(in.TrainerCode))
	if code != "" && in.Level == domain.LevelStudent {
		var err error
		trainer, err = s.userRepo.GetByTrainerCode(ctx, code)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrTrainerCodeNotFound
			}
			return nil, err
		}
		user.TrainerID = &trainer.ID
		user.PendingTrainerApproval = true
	}

	// 4. Trainers get their code at creation
	if in.Level == domain.LevelTrainer {
		trainerCode, err := uniqueTrainerCode(ctx, s.userRepo, s.codeGen)
		if err != nil {
			return nil, err
		}
		user.TrainerCode = trainerCode
	}

	// 5. Hash the password
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	// 6. Save the user to the database
	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	user.ID = userID

	if trainer != nil {
		s.notifier.notify(ctx, trainer.ID, EventLinkRequested, refOf(user))
	}
	s.logger.Info("user registered",
		zap.String("user_id", userID.Hex()),
		zap.Stringer("level", in.Level))

	user.PasswordHash = ""
	return user, nil
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (token string, user *domain.User, err error) {
	// 1. Basic Input Validation
	email = normalizeEmail(email)
	if email == "" || password == "" {
		err = fmt.Errorf("%w: email and password cannot be empty", ErrValidation)
		return
	}

	// 2. Fetch user by email
	user, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrAuthenticationFailed
		}
		user = nil
		return
	}

	// 3. Compare the provided password with the stored hash
	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	// 4. Generate JWT
	token, err = s.generateJWT(user)
	if err != nil {
		s.logger.Error("jwt signing failed", zap.Error(err))
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return token, user, nil
}

func (s *authService) Me(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := getUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile changes the display name and avatar. Empty values keep the current ones.
func (s *authService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, name, avatarURL string) (*domain.User, error) {
	user, err := getUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name == "" {
		name = user.Name
	}
	if avatarURL == "" {
		avatarURL = user.AvatarURL
	}
	if err := s.userRepo.UpdateProfile(ctx, userID, name, avatarURL); err != nil {
		return nil, err
	}
	user.Name = name
	user.AvatarURL = avatarURL
	user.PasswordHash = ""
	return user, nil
}

// --- JWT Helper ---

// Claims is the JWT payload issued at login.
type Claims struct {
	UserID string       `json:"uid"`
	Level  domain.Level `json:"level"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the given user.
func (s *authService) generateJWT(user *domain.User) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: user.ID.Hex(),
		Level:  user.Level,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "fitcoach",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ParseToken validates a signed token and returns its claims.
func (s *authService) ParseToken(tokenString string) (*Claims, error) {
	return ParseToken(tokenString, s.jwtSecret)
}

// ParseToken validates tokenString against secret. Only HMAC signing is accepted.
func ParseToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" || !claims.Level.Valid() {
		return nil, errors.New("invalid token or missing claims")
	}
	return claims, nil
}

// --- shared account helpers ---

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", ErrHashingFailed
	}
	return string(hashed), nil
}

func ensureEmailFree(ctx context.Context, users repository.UserRepository, email string) error {
	_, err := users.GetByEmail(ctx, email)
	if err == nil {
		return ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

func getUser(ctx context.Context, users repository.UserRepository, id primitive.ObjectID) (*domain.User, error) {
	user, err := users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// userRef is the public part of a user carried in notifications.
type userRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func refOf(u *domain.User) userRef {
	return userRef{ID: u.ID.Hex(), Name: u.Name}
}
