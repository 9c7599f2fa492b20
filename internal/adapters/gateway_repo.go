package adapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/h44z/sms-portal/internal/domain"
)

// defaultPageSize limits listings that do not request a page size.
const defaultPageSize = 100

// GatewayRepo stores the records of the mock gateway: users, messages, campaigns and recipient files.
type GatewayRepo struct {
	db *gorm.DB
}

// NewGatewayRepository creates a new GatewayRepo instance and migrates the gateway tables.
func NewGatewayRepository(db *gorm.DB) (*GatewayRepo, error) {
	repo := &GatewayRepo{
		db: db,
	}

	if err := repo.migrate(); err != nil {
		return nil, fmt.Errorf("failed to initialize gateway database: %w", err)
	}

	return repo, nil
}

func (r *GatewayRepo) migrate() error {
	for _, model := range []any{&domain.User{}, &domain.Message{}, &domain.Campaign{}, &domain.NumFile{}} {
		if err := r.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
		slog.Debug("gateway migration done", "model", fmt.Sprintf("%T", model))
	}
	return nil
}

// orderColumn maps a sort key of a filter to its column, "" if the key is not sortable.
func orderColumn(key string, allowed map[string]string, fallback string) string {
	if key == "" {
		return fallback
	}
	return allowed[key]
}

// paginate applies the order and the cursor of a listing. A cursor continues after the given value of the order column.
func paginate(tx *gorm.DB, column, dir, from string, numericCursor bool, perPage int) (*gorm.DB, error) {
	asc := strings.EqualFold(dir, "ASC")

	if from != "" {
		var cursor any = from
		if numericCursor {
			v, err := strconv.ParseInt(from, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid value for from: %s", domain.ErrInvalidData, from)
			}
			cursor = v
		}
		if asc {
			tx = tx.Where(column+" > ?", cursor)
		} else {
			tx = tx.Where(column+" < ?", cursor)
		}
	}

	if asc {
		tx = tx.Order(column + " asc")
	} else {
		tx = tx.Order(column + " desc")
	}

	if perPage > 0 {
		tx = tx.Limit(perPage)
	}
	return tx, nil
}

// region users

var userOrderColumns = map[string]string{
	"Username":     "username",
	"Email":        "email",
	"Name":         "name",
	"RegisteredAt": "registered_at",
}

// GetUser returns the user with the given username.
// If no user is found, an error domain.ErrNotFound is returned.
func (r *GatewayRepo) GetUser(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User

	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// FindUsers returns the users matching the filter. Permissions must all be held by a user to match.
func (r *GatewayRepo) FindUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	tx := r.db.WithContext(ctx).Model(&domain.User{})
	if filter.Username != "" {
		tx = tx.Where("username = ?", filter.Username)
	}
	if filter.Email != "" {
		tx = tx.Where("email = ?", filter.Email)
	}
	if filter.Name != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
	}
	if filter.ConnectionGroup != "" {
		tx = tx.Where("connection_group = ?", filter.ConnectionGroup)
	}
	if filter.Suspended {
		tx = tx.Where("suspended = ?", true)
	}
	if filter.RegisteredAfter > 0 {
		tx = tx.Where("registered_at >= ?", filter.RegisteredAfter)
	}
	if filter.RegisteredBefore > 0 {
		tx = tx.Where("registered_at <= ?", filter.RegisteredBefore)
	}

	column := orderColumn(filter.OrderByKey, userOrderColumns, "username")
	if column == "" {
		return nil, fmt.Errorf("%w: unsupported order key %s", domain.ErrInvalidData, filter.OrderByKey)
	}
	perPage := filter.PerPage
	if perPage == 0 {
		perPage = defaultPageSize
	}
	tx, err := paginate(tx, column, orderDir(filter.OrderByDir, "ASC"), filter.From,
		column == "registered_at", perPage)
	if err != nil {
		return nil, err
	}

	var users []domain.User
	if err := tx.Find(&users).Error; err != nil {
		return nil, err
	}

	if len(filter.Permissions) == 0 {
		return users, nil
	}
	matching := users[:0]
	for _, u := range users {
		if holdsAll(u.Permissions, filter.Permissions) {
			matching = append(matching, u)
		}
	}
	return matching, nil
}

// CreateUser stores a new user. If the username is taken, an error domain.ErrNotUnique is returned.
func (r *GatewayRepo) CreateUser(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("user %s already exists: %w", user.Username, domain.ErrNotUnique)
		}

		return tx.Create(user).Error
	})
}

// SaveUser updates the user with the given username.
// If no user is found, an error domain.ErrNotFound is returned.
func (r *GatewayRepo) SaveUser(
	ctx context.Context,
	username string,
	updateFunc func(u *domain.User) (*domain.User, error),
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user domain.User
		err := tx.Where("username = ?", username).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err // return any error will roll back
		}

		updated, err := updateFunc(&user)
		if err != nil {
			return err
		}

		return tx.Save(updated).Error
	})
}

// endregion users

// region messages

var messageOrderColumns = map[string]string{
	"QueuedAt":    "queued_at",
	"DeliveredAt": "delivered_at",
	"SentAt":      "sent_at",
}

// SaveMessages stores the given messages, ids are assigned by the database.
func (r *GatewayRepo) SaveMessages(ctx context.Context, msgs []*domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(msgs, 500).Error
}

// SaveMessage updates a single message.
func (r *GatewayRepo) SaveMessage(ctx context.Context, msg *domain.Message) error {
	return r.db.WithContext(ctx).Save(msg).Error
}

// FindMessages returns the messages matching the filter. A PerPage of zero falls back to the default
// page size unless unlimited is set.
func (r *GatewayRepo) FindMessages(ctx context.Context, filter domain.MessageFilter, unlimited bool) (
	[]domain.Message,
	error,
) {
	tx := r.db.WithContext(ctx).Model(&domain.Message{})
	if filter.Username != "" {
		tx = tx.Where("username = ?", filter.Username)
	}
	if filter.Dst != "" {
		tx = tx.Where("dst = ?", filter.Dst)
	}
	if filter.Src != "" {
		tx = tx.Where("src = ?", filter.Src)
	}
	if filter.Enc != "" {
		tx = tx.Where("enc = ?", filter.Enc)
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status)
	}
	if filter.CampaignID > 0 {
		tx = tx.Where("campaign_id = ?", filter.CampaignID)
	}
	if filter.QueuedAfter > 0 {
		tx = tx.Where("queued_at >= ?", filter.QueuedAfter)
	}
	if filter.QueuedBefore > 0 {
		tx = tx.Where("queued_at <= ?", filter.QueuedBefore)
	}
	if filter.DeliveredAfter > 0 {
		tx = tx.Where("delivered_at >= ?", filter.DeliveredAfter)
	}
	if filter.DeliveredBefore > 0 {
		tx = tx.Where("delivered_at <= ?", filter.DeliveredBefore)
	}

	column := orderColumn(filter.OrderByKey, messageOrderColumns, "queued_at")
	if column == "" {
		return nil, fmt.Errorf("%w: unsupported order key %s", domain.ErrInvalidData, filter.OrderByKey)
	}
	perPage := filter.PerPage
	if perPage == 0 && !unlimited {
		perPage = defaultPageSize
	}
	tx, err := paginate(tx, column, orderDir(filter.OrderByDir, "DESC"), filter.From, true, perPage)
	if err != nil {
		return nil, err
	}
	tx = tx.Order("id desc")

	var msgs []domain.Message
	if err := tx.Find(&msgs).Error; err != nil {
		return nil, err
	}

	return msgs, nil
}

// UpdateCampaignMessages moves all messages of the campaign in status from to status to.
// It returns the number of changed messages.
func (r *GatewayRepo) UpdateCampaignMessages(
	ctx context.Context,
	campaignId int64,
	from, to domain.MessageStatus,
) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("campaign_id = ? AND status = ?", campaignId, from).
		Updates(map[string]any{"status": to, "error": ""})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// CampaignMessageStats returns the message count per status and the queue/send time range of a campaign.
func (r *GatewayRepo) CampaignMessageStats(ctx context.Context, campaignId int64) (
	map[domain.MessageStatus]int,
	int64,
	int64,
	error,
) {
	var rows []struct {
		Status domain.MessageStatus
		Total  int
	}
	err := r.db.WithContext(ctx).Model(&domain.Message{}).
		Select("status, COUNT(*) AS total").
		Where("campaign_id = ?", campaignId).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, 0, 0, err
	}

	statuses := make(map[domain.MessageStatus]int, len(rows))
	for _, row := range rows {
		statuses[row.Status] = row.Total
	}

	var span struct {
		FirstQueued int64
		LastSent    int64
	}
	err = r.db.WithContext(ctx).Model(&domain.Message{}).
		Select("COALESCE(MIN(queued_at), 0) AS first_queued, COALESCE(MAX(sent_at), 0) AS last_sent").
		Where("campaign_id = ?", campaignId).
		Scan(&span).Error
	if err != nil {
		return nil, 0, 0, err
	}

	return statuses, span.FirstQueued, span.LastSent, nil
}

// endregion messages

// region campaigns

// CreateCampaign stores the campaign, the id is assigned by the database.
func (r *GatewayRepo) CreateCampaign(ctx context.Context, campaign *domain.Campaign) error {
	return r.db.WithContext(ctx).Create(campaign).Error
}

// GetCampaign returns the campaign with the given id.
// If no campaign is found, an error domain.ErrNotFound is returned.
func (r *GatewayRepo) GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error) {
	var campaign domain.Campaign

	err := r.db.WithContext(ctx).First(&campaign, id).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &campaign, nil
}

// GetCampaigns returns the newest campaigns first.
func (r *GatewayRepo) GetCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	var campaigns []domain.Campaign

	err := r.db.WithContext(ctx).Order("submitted_at desc, id desc").Limit(defaultPageSize).Find(&campaigns).Error
	if err != nil {
		return nil, err
	}

	return campaigns, nil
}

// endregion campaigns

// region files

// SaveFile stores the given recipient file.
func (r *GatewayRepo) SaveFile(ctx context.Context, file *domain.NumFile) error {
	return r.db.WithContext(ctx).Save(file).Error
}

// GetFile returns the recipient file with the given id. Deleted files are not found.
func (r *GatewayRepo) GetFile(ctx context.Context, id string) (*domain.NumFile, error) {
	var file domain.NumFile

	err := r.db.WithContext(ctx).Where("id = ? AND deleted = ?", id, false).First(&file).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &file, nil
}

// GetFiles returns all recipient files that were not deleted, newest first.
func (r *GatewayRepo) GetFiles(ctx context.Context) ([]domain.NumFile, error) {
	var files []domain.NumFile

	err := r.db.WithContext(ctx).Where("deleted = ?", false).Order("submitted_at desc").Find(&files).Error
	if err != nil {
		return nil, err
	}

	return files, nil
}

// DeleteFile marks the recipient file as deleted, campaigns started from it keep their reference.
func (r *GatewayRepo) DeleteFile(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&domain.NumFile{}).
		Where("id = ? AND deleted = ?", id, false).
		Update("deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// endregion files

func orderDir(dir, fallback string) string {
	if dir == "" {
		return fallback
	}
	return strings.ToUpper(dir)
}

func holdsAll(held, wanted []domain.Permission) bool {
	for _, p := range wanted {
		if !slices.Contains(held, p) {
			return false
		}
	}
	return true
}
