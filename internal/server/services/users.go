// Package services contains the application services behind the HTTP API:
// accounts, land records, documents, and the tokenization workflow.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/IscoRuta98/ArdhiHub-server/internal/common"
	"github.com/IscoRuta98/ArdhiHub-server/internal/dbx"
	"github.com/IscoRuta98/ArdhiHub-server/internal/ledger"
	"github.com/IscoRuta98/ArdhiHub-server/internal/server/auth"
	"github.com/IscoRuta98/ArdhiHub-server/internal/server/config"
	"github.com/IscoRuta98/ArdhiHub-server/internal/server/models"
	"github.com/IscoRuta98/ArdhiHub-server/internal/server/repositories/repomanager"
)

// KeyVault seals and opens private key material. Implemented by vault.Vault.
type KeyVault interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(blob []byte) ([]byte, error)
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterParams carries the fields of a registration request.
type RegisterParams struct {
	Username    string
	Password    string
	FirstName   string
	Surname     string
	NationalID  int64
	PhoneNumber string
	Role        models.Role
}

type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	vault                        KeyVault
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, vault KeyVault, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		vault:                        vault,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register creates a user together with a fresh ledger account. The account's
// private key is sealed by the vault before it touches the repository; the
// plaintext copy is wiped as soon as the sealed blob exists.
func (s *UserService) Register(ctx context.Context, params RegisterParams) (*models.User, error) {

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, common.ErrInternal
	}

	address, privateKey := ledger.GenerateAccount()

	encryptedKey, err := s.vault.Encrypt(privateKey)
	if err != nil {
		return nil, fmt.Errorf("error sealing account key: %w", err)
	}
	common.WipeByteArray(privateKey)

	user := &models.User{
		Username:            params.Username,
		HashedPassword:      hash,
		FirstName:           params.FirstName,
		Surname:             params.Surname,
		NationalID:          params.NationalID,
		PhoneNumber:         params.PhoneNumber,
		Role:                params.Role,
		Address:             address,
		EncryptedPrivateKey: encryptedKey,
	}

	repo := s.repomanager.Users(s.db)
	user, err = repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %v", err)
	}

	return user, nil
}

// Login checks the password and issues a token pair. Unknown users, wrong
// passwords, and disabled accounts are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username string, password string) (*TokenPair, error) {

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}

	if !auth.CheckPassword(user.HashedPassword, password) {
		return nil, common.ErrUnauthorized
	}

	if user.Disabled {
		return nil, common.ErrUnauthorized
	}

	return s.generateTokenPair(ctx, s.db, user.ID)
}

// RefreshToken rotates a refresh token: the old token is deleted and a new
// pair issued in one transaction, so a token can never be redeemed twice.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {

	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %v", err)
	}

	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var tokenPair *TokenPair

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		txRepo := s.repomanager.RefreshTokens(tx)

		if err := txRepo.Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %v", err)
		}

		tokenPair, err = s.generateTokenPair(ctx, tx, token.UserID)
		if err != nil {
			return fmt.Errorf("error generating token pair: %v", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return tokenPair, nil
}

// GetByID returns the user for an authenticated id.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

func (s *UserService) generateAccessToken(userID string) (string, error) {
	token, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *UserService) generateRefreshToken() (string, error) {
	token, err := common.MakeRandHexString(32)
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *UserService) generateTokenPair(ctx context.Context, db dbx.DBTX, userID string) (*TokenPair, error) {
	accessToken, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, common.ErrInternal
	}

	refreshToken, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrInternal
	}

	refreshTokenRepo := s.repomanager.RefreshTokens(db)
	if err := refreshTokenRepo.Create(ctx, userID, refreshToken, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrInternal
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
