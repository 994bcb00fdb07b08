package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"order-dashboard/internal/core/kv"
	"order-dashboard/internal/features/settings/domain"
)

const (
	storeCredentialsKey   = "store_credentials"
	courierCredentialsKey = "courier_credentials"
)

// SettingsService persists connection and courier credentials through the
// key-value store. It is the single reader/writer of credential state; the
// gateways receive it as their credential source instead of reaching into
// ambient storage.
type SettingsService struct {
	store kv.Store
}

// NewSettingsService creates a SettingsService on top of the given store.
func NewSettingsService(store kv.Store) *SettingsService {
	return &SettingsService{store: store}
}

// StoreCredentials returns the persisted store connection credentials.
// Absent credentials come back as the zero value, not an error; callers
// check Complete().
func (s *SettingsService) StoreCredentials(ctx context.Context) (domain.StoreCredentials, error) {
	var creds domain.StoreCredentials
	if err := s.load(ctx, storeCredentialsKey, &creds); err != nil {
		return domain.StoreCredentials{}, err
	}
	return creds, nil
}

// SaveStoreCredentials persists the store connection credentials.
func (s *SettingsService) SaveStoreCredentials(ctx context.Context, creds domain.StoreCredentials) error {
	return s.save(ctx, storeCredentialsKey, creds)
}

// CourierCredentials returns the persisted courier key material. Absent
// records come back as the zero value.
func (s *SettingsService) CourierCredentials(ctx context.Context) (domain.CourierCredentials, error) {
	var creds domain.CourierCredentials
	if err := s.load(ctx, courierCredentialsKey, &creds); err != nil {
		return domain.CourierCredentials{}, err
	}
	return creds, nil
}

// SaveCourierCredentials persists the courier key material.
func (s *SettingsService) SaveCourierCredentials(ctx context.Context, creds domain.CourierCredentials) error {
	return s.save(ctx, courierCredentialsKey, creds)
}

// Clear wipes every persisted credential. Used on logout.
func (s *SettingsService) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear settings: %w", err)
	}
	return nil
}

func (s *SettingsService) load(ctx context.Context, key string, dst any) error {
	raw, err := s.store.Get(ctx, key)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (s *SettingsService) save(ctx context.Context, key string, src any) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}
