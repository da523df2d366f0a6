package service

import (
	"context"
	"time"

	"codetrack/internal/common"
	"codetrack/internal/common/security"
	"codetrack/internal/domain/model"
	"codetrack/internal/domain/repository"

	"github.com/google/go-github/v66/github"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// AuthService runs the GitHub OAuth onboarding flow: it hands the
// student to GitHub with a signed state, then on callback exchanges the
// code, encrypts the token and upserts the student record.
type AuthService struct {
	studentRepo repository.StudentRepository
	sheetRepo   repository.SheetRepository
	oauth       *oauth2.Config
	signer      *security.StateSigner
	cipher      *security.TokenCipher
	defaultRepo string
	log         *zap.Logger

	// Seams for tests; default to the real OAuth exchange and the
	// GitHub users API.
	exchange   func(ctx context.Context, code string) (*oauth2.Token, error)
	fetchLogin func(ctx context.Context, token *oauth2.Token) (string, error)
}

func NewAuthService(
	studentRepo repository.StudentRepository,
	sheetRepo repository.SheetRepository,
	oauth *oauth2.Config,
	signer *security.StateSigner,
	cipher *security.TokenCipher,
	defaultRepo string,
	log *zap.Logger,
) *AuthService {
	s := &AuthService{
		studentRepo: studentRepo,
		sheetRepo:   sheetRepo,
		oauth:       oauth,
		signer:      signer,
		cipher:      cipher,
		defaultRepo: defaultRepo,
		log:         log,
	}
	s.exchange = func(ctx context.Context, code string) (*oauth2.Token, error) {
		return s.oauth.Exchange(ctx, code)
	}
	s.fetchLogin = func(ctx context.Context, token *oauth2.Token) (string, error) {
		gh := github.NewClient(s.oauth.Client(ctx, token))
		user, _, err := gh.Users.Get(ctx, "")
		if err != nil {
			return "", err
		}
		return user.GetLogin(), nil
	}
	return s
}

// BeginAuth resolves the student's group to a sheet id, signs the OAuth
// state and returns the GitHub authorization URL to redirect to. Either
// sheetID or groupName must be provided.
func (s *AuthService) BeginAuth(ctx context.Context, email, sheetID, groupName, extensionID string) (string, error) {
	if email == "" || extensionID == "" || (sheetID == "" && groupName == "") {
		return "", common.Errorf("email, extension id and group (name or sheet id) are required: %w", common.ErrValidation)
	}

	if sheetID == "" {
		sheet, err := s.sheetRepo.FindByName(ctx, groupName)
		if err != nil {
			return "", common.Errorf("group %q: %w", groupName, err)
		}
		sheetID = sheet.SheetID
		if sheet.Name != "" {
			groupName = sheet.Name
		}
	}

	state, err := s.signer.Sign(security.OAuthState{
		Email:       email,
		SheetID:     sheetID,
		GroupName:   groupName,
		ExtensionID: extensionID,
	})
	if err != nil {
		return "", common.Errorf("signing oauth state: %w", err)
	}

	return s.oauth.AuthCodeURL(state), nil
}

// CompleteAuth handles the OAuth callback: verifies the state, exchanges
// the code, fetches the GitHub login, encrypts the access token and
// upserts the student. It returns the extension id carried through the
// state so the handler can redirect back to the extension.
func (s *AuthService) CompleteAuth(ctx context.Context, code, stateToken string) (string, error) {
	if code == "" || stateToken == "" {
		return "", common.Errorf("code and state are required: %w", common.ErrBadRequest)
	}

	state, err := s.signer.Verify(stateToken)
	if err != nil {
		return "", common.Errorf("invalid oauth state: %w", common.ErrBadRequest)
	}
	if state.SheetID == "" {
		return "", common.Errorf("oauth state is missing the sheet id: %w", common.ErrBadRequest)
	}

	token, err := s.exchange(ctx, code)
	if err != nil {
		return state.ExtensionID, common.Errorf("exchanging oauth code: %w: %w", common.ErrUpstream, err)
	}

	login, err := s.fetchLogin(ctx, token)
	if err != nil {
		return state.ExtensionID, common.Errorf("fetching github user: %w: %w", common.ErrUpstream, err)
	}

	ciphertext, iv, authTag, err := s.cipher.Encrypt(token.AccessToken)
	if err != nil {
		return state.ExtensionID, common.Errorf("encrypting credential: %w", err)
	}

	student := &model.Student{
		ID:              uuid.NewString(),
		Email:           state.Email,
		SheetID:         state.SheetID,
		TokenCiphertext: ciphertext,
		TokenIV:         iv,
		TokenAuthTag:    authTag,
		GithubUsername:  login,
		RepoName:        s.defaultRepo,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.studentRepo.Upsert(ctx, student); err != nil {
		return state.ExtensionID, common.Errorf("upserting student %s: %w", state.Email, err)
	}

	s.log.Info("github connected",
		zap.String("email", state.Email), zap.String("github_username", login))
	return state.ExtensionID, nil
}
