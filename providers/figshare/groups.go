package figshare

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"rdbackup/models"
)

// GetGroups holt alle institutionellen Gruppen.
func (c *Client) GetGroups(ctx context.Context) ([]models.Group, error) {
	raw, err := c.GetAll(ctx, "/account/institution/groups", ListOptions{})
	if err != nil {
		return nil, err
	}

	groups := make([]models.Group, 0, len(raw))
	for _, record := range raw {
		var group models.Group
		if err := json.Unmarshal(record, &group); err != nil {
			c.Logger.Warn("Gruppen-Record konnte nicht dekodiert werden", zap.Error(err))
			continue
		}
		groups = append(groups, group)
	}
	c.Logger.Info("Gruppen geladen", zap.Int("groups", len(groups)))
	return groups, nil
}
