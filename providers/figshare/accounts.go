package figshare

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"rdbackup/models"
)

// GetAccounts holt alle institutionellen Accounts über einen Sweep.
func (c *Client) GetAccounts(ctx context.Context) ([]models.Account, error) {
	c.Logger.Info("Starte Account-Sweep.")
	raw, err := c.GetAll(ctx, "/account/institution/accounts", ListOptions{
		InstitutionID: c.Config.InstitutionID,
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]models.Account, 0, len(raw))
	for _, record := range raw {
		var account models.Account
		if err := json.Unmarshal(record, &account); err != nil {
			c.Logger.Warn("Account-Record konnte nicht dekodiert werden", zap.Error(err))
			continue
		}
		accounts = append(accounts, account)
	}
	c.Logger.Info("Account-Sweep abgeschlossen", zap.Int("accounts", len(accounts)))
	return accounts, nil
}
