package models

// Account repräsentiert einen institutionellen Mitglieds-Account des Upstream-Repositories.
type Account struct {
	InternalID int64 `json:"-"`

	FigshareID        int64      `json:"id"`
	Email             *string    `json:"email,omitempty"`
	FirstName         *string    `json:"first_name,omitempty"`
	LastName          *string    `json:"last_name,omitempty"`
	MaidenName        *string    `json:"maiden_name,omitempty"`
	Active            int64      `json:"active"`
	InstitutionID     *int64     `json:"institution_id,omitempty"`
	InstitutionUserID *string    `json:"institution_user_id,omitempty"`
	GroupID           *int64     `json:"group_id,omitempty"`
	Quota             *int64     `json:"quota,omitempty"`
	UsedQuota         *int64     `json:"used_quota,omitempty"`
	UsedQuotaPublic   *int64     `json:"used_quota_public,omitempty"`
	UsedQuotaPrivate  *int64     `json:"used_quota_private,omitempty"`
	PendingQuota      *int64     `json:"pending_quota_request,omitempty"`
	CreatedDate       *Timestamp `json:"created_date,omitempty"`
	ModifiedDate      *Timestamp `json:"modified_date,omitempty"`
}
