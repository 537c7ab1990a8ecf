// Package repositorytest provides in-memory repository implementations for
// service tests. Misses return gorm.ErrRecordNotFound so services can treat
// the fakes exactly like the real gorm-backed repositories.
package repositorytest

import (
	"sort"
	"time"

	"github.com/carryit/rentpay/app/models"
	"github.com/carryit/rentpay/app/repository"
	"gorm.io/gorm"
)

// NewRepositories returns a fully wired in-memory repository set.
func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		PaymentRequest: NewPaymentRequestRepo(),
		Transaction:    NewTransactionRepo(),
		Tenant:         NewTenantRepo(),
		Unit:           NewUnitRepo(),
		Property:       NewPropertyRepo(),
		Setting:        NewSettingRepo(),
	}
}

// PaymentRequestRepo is an in-memory PaymentRequestRepository.
type PaymentRequestRepo struct {
	nextID   uint
	Requests map[uint]*models.PaymentRequest
}

func NewPaymentRequestRepo() *PaymentRequestRepo {
	return &PaymentRequestRepo{nextID: 1, Requests: make(map[uint]*models.PaymentRequest)}
}

// Seed stores a request as-is, assigning an ID when missing.
func (r *PaymentRequestRepo) Seed(req models.PaymentRequest) *models.PaymentRequest {
	if req.ID == 0 {
		req.ID = r.nextID
	}
	if req.ID >= r.nextID {
		r.nextID = req.ID + 1
	}
	r.Requests[req.ID] = &req
	return &req
}

func (r *PaymentRequestRepo) Create(req *models.PaymentRequest) error {
	req.ID = r.nextID
	r.nextID++
	cp := *req
	r.Requests[req.ID] = &cp
	return nil
}

func (r *PaymentRequestRepo) GetByID(id uint) (*models.PaymentRequest, error) {
	req, ok := r.Requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *req
	return &cp, nil
}

func (r *PaymentRequestRepo) GetByUnitID(unitID uint, offset, limit int) ([]models.PaymentRequest, error) {
	return r.list(func(req *models.PaymentRequest) bool { return req.UnitID == unitID }, offset, limit), nil
}

func (r *PaymentRequestRepo) GetByTenantID(tenantID uint, offset, limit int) ([]models.PaymentRequest, error) {
	return r.list(func(req *models.PaymentRequest) bool {
		return req.TenantID != nil && *req.TenantID == tenantID
	}, offset, limit), nil
}

func (r *PaymentRequestRepo) GetByPayerID(payerID uint, offset, limit int) ([]models.PaymentRequest, error) {
	return r.list(func(req *models.PaymentRequest) bool { return req.PayerID == payerID }, offset, limit), nil
}

func (r *PaymentRequestRepo) list(match func(*models.PaymentRequest) bool, offset, limit int) []models.PaymentRequest {
	var out []models.PaymentRequest
	for _, req := range r.Requests {
		if match(req) {
			out = append(out, *req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

func (r *PaymentRequestRepo) SetPayload(id uint, payload string) error {
	req, ok := r.Requests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	req.Payload = payload
	return nil
}

func (r *PaymentRequestRepo) MarkUsed(id uint, usedAt time.Time) error {
	req, ok := r.Requests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	req.Status = models.RequestStatusUsed
	req.UsedAt = &usedAt
	return nil
}

func (r *PaymentRequestRepo) MarkCancelled(id uint) (bool, error) {
	req, ok := r.Requests[id]
	if !ok || req.Status != models.RequestStatusActive {
		return false, nil
	}
	req.Status = models.RequestStatusCancelled
	return true, nil
}

func (r *PaymentRequestRepo) ExpireStale(now time.Time) (int64, error) {
	var n int64
	for _, req := range r.Requests {
		if req.Status == models.RequestStatusActive && !req.ExpiresAt.After(now) {
			req.Status = models.RequestStatusExpired
			n++
		}
	}
	return n, nil
}

// TransactionRepo is an in-memory TransactionRepository.
type TransactionRepo struct {
	nextID       uint
	Transactions map[uint]*models.MobileTransaction
}

func NewTransactionRepo() *TransactionRepo {
	return &TransactionRepo{nextID: 1, Transactions: make(map[uint]*models.MobileTransaction)}
}

func (r *TransactionRepo) Seed(tx models.MobileTransaction) *models.MobileTransaction {
	if tx.ID == 0 {
		tx.ID = r.nextID
	}
	if tx.ID >= r.nextID {
		r.nextID = tx.ID + 1
	}
	r.Transactions[tx.ID] = &tx
	return &tx
}

func (r *TransactionRepo) Create(tx *models.MobileTransaction) error {
	for _, existing := range r.Transactions {
		if existing.ExternalID == tx.ExternalID {
			return gorm.ErrDuplicatedKey
		}
	}
	tx.ID = r.nextID
	r.nextID++
	cp := *tx
	r.Transactions[tx.ID] = &cp
	return nil
}

func (r *TransactionRepo) GetByID(id uint) (*models.MobileTransaction, error) {
	tx, ok := r.Transactions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *tx
	return &cp, nil
}

func (r *TransactionRepo) GetByExternalID(externalID string) (*models.MobileTransaction, error) {
	for _, tx := range r.Transactions {
		if tx.ExternalID == externalID {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *TransactionRepo) GetByProviderTxID(providerTxID string) (*models.MobileTransaction, error) {
	for _, tx := range r.Transactions {
		if tx.ProviderTxID == providerTxID {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *TransactionRepo) RecordProviderAck(id uint, providerTxID, providerStatus, rawResponse string) error {
	tx, ok := r.Transactions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	tx.ProviderTxID = providerTxID
	tx.ProviderStatus = providerStatus
	tx.ProviderResponse = rawResponse
	return nil
}

func (r *TransactionRepo) MarkPaid(id uint, completedAt time.Time, providerStatus, rawPayload string) (bool, error) {
	tx, ok := r.Transactions[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if tx.Status != models.TransactionStatusPending {
		return false, nil
	}
	tx.Status = models.TransactionStatusPaid
	tx.CompletedAt = &completedAt
	tx.ProviderStatus = providerStatus
	tx.CallbackPayload = rawPayload
	return true, nil
}

func (r *TransactionRepo) MarkFailed(id uint, failedAt time.Time, reason, rawPayload string) (bool, error) {
	tx, ok := r.Transactions[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if tx.Status != models.TransactionStatusPending {
		return false, nil
	}
	tx.Status = models.TransactionStatusFailed
	tx.FailedAt = &failedAt
	tx.FailureReason = reason
	tx.CallbackPayload = rawPayload
	return true, nil
}

func (r *TransactionRepo) StoreCallbackPayload(id uint, rawPayload string) error {
	tx, ok := r.Transactions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	tx.CallbackPayload = rawPayload
	return nil
}

func (r *TransactionRepo) GetPaidInWindow(start, end time.Time) ([]models.MobileTransaction, error) {
	var out []models.MobileTransaction
	for _, tx := range r.Transactions {
		if tx.Status != models.TransactionStatusPaid || tx.CompletedAt == nil {
			continue
		}
		if tx.CompletedAt.Before(start) || !tx.CompletedAt.Before(end) {
			continue
		}
		out = append(out, *tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *TransactionRepo) GetPaidUnlinked() ([]models.MobileTransaction, error) {
	var out []models.MobileTransaction
	for _, tx := range r.Transactions {
		if tx.Status == models.TransactionStatusPaid && tx.TenantID == nil {
			out = append(out, *tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *TransactionRepo) LinkTenant(id uint, tenantID uint) error {
	tx, ok := r.Transactions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	tid := tenantID
	tx.TenantID = &tid
	return nil
}

// TenantRepo is an in-memory TenantRepository.
type TenantRepo struct {
	nextID  uint
	Tenants map[uint]*models.Tenant
}

func NewTenantRepo() *TenantRepo {
	return &TenantRepo{nextID: 1, Tenants: make(map[uint]*models.Tenant)}
}

func (r *TenantRepo) Seed(t models.Tenant) *models.Tenant {
	if t.ID == 0 {
		t.ID = r.nextID
	}
	if t.ID >= r.nextID {
		r.nextID = t.ID + 1
	}
	r.Tenants[t.ID] = &t
	return &t
}

func (r *TenantRepo) GetByID(id uint) (*models.Tenant, error) {
	t, ok := r.Tenants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *TenantRepo) GetActive() ([]models.Tenant, error) {
	var out []models.Tenant
	for _, t := range r.Tenants {
		if t.IsActive {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *TenantRepo) GetActiveByProperty(propertyID uint) ([]models.Tenant, error) {
	var out []models.Tenant
	for _, t := range r.Tenants {
		if t.IsActive && t.PropertyID == propertyID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *TenantRepo) RecordPayment(id uint, lastPayment, nextDue time.Time) error {
	t, ok := r.Tenants[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.LastPaymentDate = &lastPayment
	t.NextPaymentDue = &nextDue
	return nil
}

func (r *TenantRepo) SetCategory(id uint, category string) error {
	t, ok := r.Tenants[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.RentPaymentStatus = category
	return nil
}

func (r *TenantRepo) Deactivate(id uint, moveOutDate time.Time) error {
	t, ok := r.Tenants[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.IsActive = false
	t.MoveOutDate = &moveOutDate
	return nil
}

// UnitRepo is an in-memory UnitRepository.
type UnitRepo struct {
	nextID uint
	Units  map[uint]*models.Unit
}

func NewUnitRepo() *UnitRepo {
	return &UnitRepo{nextID: 1, Units: make(map[uint]*models.Unit)}
}

func (r *UnitRepo) Seed(u models.Unit) *models.Unit {
	if u.ID == 0 {
		u.ID = r.nextID
	}
	if u.ID >= r.nextID {
		r.nextID = u.ID + 1
	}
	r.Units[u.ID] = &u
	return &u
}

func (r *UnitRepo) GetByID(id uint) (*models.Unit, error) {
	u, ok := r.Units[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UnitRepo) SetStatus(id uint, status string) error {
	u, ok := r.Units[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Status = status
	return nil
}

// PropertyRepo is an in-memory PropertyRepository.
type PropertyRepo struct {
	nextID     uint
	Properties map[uint]*models.Property
}

func NewPropertyRepo() *PropertyRepo {
	return &PropertyRepo{nextID: 1, Properties: make(map[uint]*models.Property)}
}

func (r *PropertyRepo) Seed(p models.Property) *models.Property {
	if p.ID == 0 {
		p.ID = r.nextID
	}
	if p.ID >= r.nextID {
		r.nextID = p.ID + 1
	}
	r.Properties[p.ID] = &p
	return &p
}

func (r *PropertyRepo) GetByID(id uint) (*models.Property, error) {
	p, ok := r.Properties[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

// SettingRepo is an in-memory SettingRepository.
type SettingRepo struct {
	Values map[string]string
}

func NewSettingRepo() *SettingRepo {
	return &SettingRepo{Values: make(map[string]string)}
}

func (r *SettingRepo) GetAll() ([]models.Setting, error) {
	keys := make([]string, 0, len(r.Values))
	for k := range r.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	settings := make([]models.Setting, 0, len(keys))
	for i, k := range keys {
		settings = append(settings, models.Setting{ID: uint(i + 1), Key: k, Value: r.Values[k]})
	}
	return settings, nil
}

func (r *SettingRepo) GetValue(key string) (string, error) {
	v, ok := r.Values[key]
	if !ok {
		return "", gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *SettingRepo) SetValue(key, value string) error {
	r.Values[key] = value
	return nil
}
