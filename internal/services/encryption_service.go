package services

import (
	"moodring/internal/crypto"
	"moodring/internal/models"
)

// EncryptionService wraps the crypto cipher with check-in specific methods.
// Only the free-text reason is encrypted; everything the aggregation and
// feed queries filter or sort on stays in the clear.
type EncryptionService struct {
	cipher *crypto.Cipher
}

func NewEncryptionService(key []byte) (*EncryptionService, error) {
	c, err := crypto.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &EncryptionService{cipher: c}, nil
}

// EncryptCheckIn encrypts sensitive check-in fields before storing.
func (s *EncryptionService) EncryptCheckIn(c *models.CheckIn) error {
	if c.Reason == nil || *c.Reason == "" {
		return nil
	}
	sealed, err := s.cipher.Encrypt(*c.Reason)
	if err != nil {
		return err
	}
	c.Reason = &sealed
	return nil
}

// DecryptCheckIn decrypts sensitive check-in fields after loading.
func (s *EncryptionService) DecryptCheckIn(c *models.CheckIn) error {
	if c.Reason == nil || *c.Reason == "" {
		return nil
	}
	plain, err := s.cipher.Decrypt(*c.Reason)
	if err != nil {
		return err
	}
	c.Reason = &plain
	return nil
}

// DecryptCheckIns decrypts a page in place.
func (s *EncryptionService) DecryptCheckIns(list []models.CheckIn) error {
	for i := range list {
		if err := s.DecryptCheckIn(&list[i]); err != nil {
			return err
		}
	}
	return nil
}
