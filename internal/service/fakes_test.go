package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"procurement-backend/internal/model"
	"procurement-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes. They return gorm.ErrRecordNotFound for
// missing rows so the services' errors.Is checks behave as they do
// against postgres, and FindByID-style methods return fresh copies so a
// mutation is only visible after the corresponding Update call.

// passthroughTxManager runs the closure on the caller's context; the
// fakes have no transactional semantics to manage.
type passthroughTxManager struct{}

func (passthroughTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type sentNotification struct {
	UserID      uuid.UUID
	Type        string
	Title       string
	Message     string
	ReferenceID string
}

type recordingNotifier struct {
	sent []sentNotification
}

func (n *recordingNotifier) Notify(_ context.Context, userID uuid.UUID, notifyType, title, message, referenceID string) {
	n.sent = append(n.sent, sentNotification{
		UserID:      userID,
		Type:        notifyType,
		Title:       title,
		Message:     message,
		ReferenceID: referenceID,
	})
}

// --- Audit ---

type memAuditRepo struct {
	entries []model.AuditLog
}

func (r *memAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memAuditRepo) List(_ context.Context, action string, _, _ int) ([]model.AuditLog, int64, error) {
	var out []model.AuditLog
	for _, e := range r.entries {
		if action == "" || e.Action == action {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memAuditRepo) actions() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

// --- Users ---

type memUserRepo struct {
	users []*model.User
}

func (r *memUserRepo) add(u model.User) uuid.UUID {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	c := u
	r.users = append(r.users, &c)
	return c.ID
}

func (r *memUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	c := *user
	r.users = append(r.users, &c)
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	for _, u := range r.users {
		if u.ID.String() == id {
			c := *u
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) List(_ context.Context, _, _ int) ([]model.User, int64, error) {
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (r *memUserRepo) Update(_ context.Context, user *model.User) error {
	for i, u := range r.users {
		if u.ID == user.ID {
			c := *user
			r.users[i] = &c
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	for i, u := range r.users {
		if u.ID.String() == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memUserRepo) FindFirstActiveByRole(_ context.Context, role string) (*model.User, error) {
	for _, u := range r.users {
		if u.IsActive && u.Role == role {
			c := *u
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) FindFirstActiveByRoleAndDepartment(_ context.Context, role, department string) (*model.User, error) {
	for _, u := range r.users {
		if u.IsActive && u.Role == role && u.Department == department {
			c := *u
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// --- Delegations ---

type memDelegationRepo struct {
	delegations []*model.ApprovalDelegation
}

func (r *memDelegationRepo) Create(_ context.Context, delegation *model.ApprovalDelegation) error {
	if delegation.ID == uuid.Nil {
		delegation.ID = uuid.New()
	}
	c := *delegation
	r.delegations = append(r.delegations, &c)
	return nil
}

func (r *memDelegationRepo) Update(_ context.Context, delegation *model.ApprovalDelegation) error {
	for i, d := range r.delegations {
		if d.ID == delegation.ID {
			c := *delegation
			r.delegations[i] = &c
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memDelegationRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ApprovalDelegation, error) {
	for _, d := range r.delegations {
		if d.ID == id {
			c := *d
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memDelegationRepo) FindActiveOverlapping(_ context.Context, delegatorID uuid.UUID, start, end time.Time) ([]model.ApprovalDelegation, error) {
	var out []model.ApprovalDelegation
	for _, d := range r.delegations {
		if d.DelegatorID == delegatorID && d.IsActive && d.Overlaps(start, end) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *memDelegationRepo) FindActiveAt(_ context.Context, delegatorID uuid.UUID, at time.Time) (*model.ApprovalDelegation, error) {
	for _, d := range r.delegations {
		if d.DelegatorID == delegatorID && d.IsActive && d.Covers(at) {
			c := *d
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memDelegationRepo) ListByDelegator(_ context.Context, delegatorID uuid.UUID, _, _ int) ([]model.ApprovalDelegation, int64, error) {
	var out []model.ApprovalDelegation
	for _, d := range r.delegations {
		if d.DelegatorID == delegatorID {
			out = append(out, *d)
		}
	}
	return out, int64(len(out)), nil
}

// --- Vendors ---

type memVendorRepo struct {
	vendors map[uuid.UUID]*model.Vendor
}

func newMemVendorRepo() *memVendorRepo {
	return &memVendorRepo{vendors: make(map[uuid.UUID]*model.Vendor)}
}

func (r *memVendorRepo) Create(_ context.Context, vendor *model.Vendor) error {
	if vendor.ID == uuid.Nil {
		vendor.ID = uuid.New()
	}
	c := *vendor
	r.vendors[vendor.ID] = &c
	return nil
}

func (r *memVendorRepo) Update(_ context.Context, vendor *model.Vendor) error {
	if _, ok := r.vendors[vendor.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	c := *vendor
	r.vendors[vendor.ID] = &c
	return nil
}

func (r *memVendorRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.vendors[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.vendors, id)
	return nil
}

func (r *memVendorRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Vendor, error) {
	v, ok := r.vendors[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *v
	return &c, nil
}

func (r *memVendorRepo) List(_ context.Context, status, search string, _, _ int) ([]model.Vendor, int64, error) {
	var out []model.Vendor
	for _, v := range r.vendors {
		if status != "" && v.Status != status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(v.Name), strings.ToLower(search)) {
			continue
		}
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *memVendorRepo) CountByPrefix(_ context.Context, prefix string) (int64, error) {
	var n int64
	for _, v := range r.vendors {
		if strings.HasPrefix(v.VendorCode, prefix) {
			n++
		}
	}
	return n, nil
}

// --- Requisitions ---

type memRequisitionRepo struct {
	reqs      map[uuid.UUID]*model.Requisition
	approvals map[uuid.UUID]map[int]*model.RequisitionApproval
}

func newMemRequisitionRepo() *memRequisitionRepo {
	return &memRequisitionRepo{
		reqs:      make(map[uuid.UUID]*model.Requisition),
		approvals: make(map[uuid.UUID]map[int]*model.RequisitionApproval),
	}
}

func (r *memRequisitionRepo) Create(_ context.Context, req *model.Requisition) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	for i := range req.Items {
		if req.Items[i].ID == uuid.Nil {
			req.Items[i].ID = uuid.New()
		}
		req.Items[i].RequisitionID = req.ID
	}
	c := *req
	c.Items = append([]model.RequisitionItem(nil), req.Items...)
	c.Approvals = nil
	r.reqs[req.ID] = &c
	return nil
}

func (r *memRequisitionRepo) Update(_ context.Context, req *model.Requisition) error {
	stored, ok := r.reqs[req.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c := *req
	c.Items = stored.Items
	c.Approvals = nil
	r.reqs[req.ID] = &c
	return nil
}

func (r *memRequisitionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Requisition, error) {
	stored, ok := r.reqs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *stored
	c.Items = append([]model.RequisitionItem(nil), stored.Items...)
	c.Approvals = nil
	for _, a := range r.approvals[id] {
		c.Approvals = append(c.Approvals, *a)
	}
	sort.Slice(c.Approvals, func(i, j int) bool { return c.Approvals[i].Stage < c.Approvals[j].Stage })
	return &c, nil
}

func (r *memRequisitionRepo) List(_ context.Context, filter repository.RequisitionListFilter) ([]model.Requisition, int64, error) {
	var out []model.Requisition
	for id, req := range r.reqs {
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		if filter.Department != "" && req.Department != filter.Department {
			continue
		}
		if filter.RequesterID != nil && req.RequesterID != *filter.RequesterID {
			continue
		}
		if filter.ApproverID != nil {
			pending := false
			for _, a := range r.approvals[id] {
				if a.ApproverID == *filter.ApproverID && a.Status == model.ApprovalPending {
					pending = true
				}
			}
			if !pending {
				continue
			}
		}
		out = append(out, *req)
	}
	return out, int64(len(out)), nil
}

func (r *memRequisitionRepo) ReplaceItems(_ context.Context, reqID uuid.UUID, items []model.RequisitionItem) error {
	stored, ok := r.reqs[reqID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].RequisitionID = reqID
	}
	stored.Items = append([]model.RequisitionItem(nil), items...)
	return nil
}

func (r *memRequisitionRepo) UpsertApproval(_ context.Context, approval *model.RequisitionApproval) error {
	if approval.ID == uuid.Nil {
		approval.ID = uuid.New()
	}
	byStage, ok := r.approvals[approval.RequisitionID]
	if !ok {
		byStage = make(map[int]*model.RequisitionApproval)
		r.approvals[approval.RequisitionID] = byStage
	}
	c := *approval
	byStage[approval.Stage] = &c
	return nil
}

func (r *memRequisitionRepo) UpdateApproval(_ context.Context, approval *model.RequisitionApproval) error {
	byStage, ok := r.approvals[approval.RequisitionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c := *approval
	byStage[approval.Stage] = &c
	return nil
}

func (r *memRequisitionRepo) FindApproval(_ context.Context, reqID uuid.UUID, stage int) (*model.RequisitionApproval, error) {
	a, ok := r.approvals[reqID][stage]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *a
	return &c, nil
}

func (r *memRequisitionRepo) CountByPrefix(_ context.Context, prefix string) (int64, error) {
	var n int64
	for _, req := range r.reqs {
		if strings.HasPrefix(req.RequisitionNo, prefix) {
			n++
		}
	}
	return n, nil
}

// --- Purchase orders ---

type memPORepo struct {
	pos       map[uuid.UUID]*model.PurchaseOrder
	items     map[uuid.UUID]*model.PurchaseOrderItem
	itemOrder map[uuid.UUID][]uuid.UUID
}

func newMemPORepo() *memPORepo {
	return &memPORepo{
		pos:       make(map[uuid.UUID]*model.PurchaseOrder),
		items:     make(map[uuid.UUID]*model.PurchaseOrderItem),
		itemOrder: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (r *memPORepo) Create(_ context.Context, po *model.PurchaseOrder) error {
	if po.ID == uuid.Nil {
		po.ID = uuid.New()
	}
	for i := range po.Items {
		if po.Items[i].ID == uuid.Nil {
			po.Items[i].ID = uuid.New()
		}
		po.Items[i].PurchaseOrderID = po.ID
		c := po.Items[i]
		r.items[c.ID] = &c
		r.itemOrder[po.ID] = append(r.itemOrder[po.ID], c.ID)
	}
	c := *po
	c.Items = nil
	r.pos[po.ID] = &c
	return nil
}

func (r *memPORepo) Update(_ context.Context, po *model.PurchaseOrder) error {
	if _, ok := r.pos[po.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	c := *po
	c.Items = nil
	r.pos[po.ID] = &c
	return nil
}

func (r *memPORepo) FindByID(_ context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	stored, ok := r.pos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *stored
	c.Items = r.loadItems(id)
	return &c, nil
}

func (r *memPORepo) loadItems(poID uuid.UUID) []model.PurchaseOrderItem {
	var out []model.PurchaseOrderItem
	for _, itemID := range r.itemOrder[poID] {
		if item, ok := r.items[itemID]; ok {
			out = append(out, *item)
		}
	}
	return out
}

func (r *memPORepo) List(_ context.Context, filter repository.PurchaseOrderListFilter) ([]model.PurchaseOrder, int64, error) {
	var out []model.PurchaseOrder
	for id, po := range r.pos {
		if filter.Status != "" && po.Status != filter.Status {
			continue
		}
		if filter.VendorID != nil && po.VendorID != *filter.VendorID {
			continue
		}
		c := *po
		c.Items = r.loadItems(id)
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (r *memPORepo) ReplaceItems(_ context.Context, poID uuid.UUID, items []model.PurchaseOrderItem) error {
	for _, itemID := range r.itemOrder[poID] {
		delete(r.items, itemID)
	}
	r.itemOrder[poID] = nil
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].PurchaseOrderID = poID
		c := items[i]
		r.items[c.ID] = &c
		r.itemOrder[poID] = append(r.itemOrder[poID], c.ID)
	}
	return nil
}

func (r *memPORepo) FindItemByID(_ context.Context, itemID uuid.UUID) (*model.PurchaseOrderItem, error) {
	item, ok := r.items[itemID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *item
	return &c, nil
}

func (r *memPORepo) UpdateItem(_ context.Context, item *model.PurchaseOrderItem) error {
	if _, ok := r.items[item.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	c := *item
	r.items[item.ID] = &c
	return nil
}

func (r *memPORepo) CountByPrefix(_ context.Context, prefix string) (int64, error) {
	var n int64
	for _, po := range r.pos {
		if strings.HasPrefix(po.PONumber, prefix) {
			n++
		}
	}
	return n, nil
}

// --- Goods receipts ---

type memGRNRepo struct {
	grns      map[uuid.UUID]*model.GoodsReceipt
	items     map[uuid.UUID]*model.GoodsReceiptItem
	itemOrder map[uuid.UUID][]uuid.UUID
}

func newMemGRNRepo() *memGRNRepo {
	return &memGRNRepo{
		grns:      make(map[uuid.UUID]*model.GoodsReceipt),
		items:     make(map[uuid.UUID]*model.GoodsReceiptItem),
		itemOrder: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (r *memGRNRepo) Create(_ context.Context, grn *model.GoodsReceipt) error {
	if grn.ID == uuid.Nil {
		grn.ID = uuid.New()
	}
	for i := range grn.Items {
		if grn.Items[i].ID == uuid.Nil {
			grn.Items[i].ID = uuid.New()
		}
		grn.Items[i].GoodsReceiptID = grn.ID
		c := grn.Items[i]
		r.items[c.ID] = &c
		r.itemOrder[grn.ID] = append(r.itemOrder[grn.ID], c.ID)
	}
	c := *grn
	c.Items = nil
	r.grns[grn.ID] = &c
	return nil
}

func (r *memGRNRepo) Update(_ context.Context, grn *model.GoodsReceipt) error {
	if _, ok := r.grns[grn.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	c := *grn
	c.Items = nil
	r.grns[grn.ID] = &c
	return nil
}

func (r *memGRNRepo) FindByID(_ context.Context, id uuid.UUID) (*model.GoodsReceipt, error) {
	stored, ok := r.grns[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *stored
	c.Items = r.loadItems(id)
	return &c, nil
}

func (r *memGRNRepo) loadItems(grnID uuid.UUID) []model.GoodsReceiptItem {
	var out []model.GoodsReceiptItem
	for _, itemID := range r.itemOrder[grnID] {
		if item, ok := r.items[itemID]; ok {
			out = append(out, *item)
		}
	}
	return out
}

func (r *memGRNRepo) List(_ context.Context, filter repository.GoodsReceiptListFilter) ([]model.GoodsReceipt, int64, error) {
	var out []model.GoodsReceipt
	for id, grn := range r.grns {
		if filter.Status != "" && grn.Status != filter.Status {
			continue
		}
		if filter.PurchaseOrderID != nil && grn.PurchaseOrderID != *filter.PurchaseOrderID {
			continue
		}
		c := *grn
		c.Items = r.loadItems(id)
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (r *memGRNRepo) ReplaceItems(_ context.Context, grnID uuid.UUID, items []model.GoodsReceiptItem) error {
	for _, itemID := range r.itemOrder[grnID] {
		delete(r.items, itemID)
	}
	r.itemOrder[grnID] = nil
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].GoodsReceiptID = grnID
		c := items[i]
		r.items[c.ID] = &c
		r.itemOrder[grnID] = append(r.itemOrder[grnID], c.ID)
	}
	return nil
}

func (r *memGRNRepo) UpdateItem(_ context.Context, item *model.GoodsReceiptItem) error {
	if _, ok := r.items[item.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	c := *item
	r.items[item.ID] = &c
	return nil
}

func (r *memGRNRepo) ListAcceptedByPO(_ context.Context, poID uuid.UUID, limit int) ([]model.GoodsReceipt, error) {
	var out []model.GoodsReceipt
	for id, grn := range r.grns {
		if grn.PurchaseOrderID != poID {
			continue
		}
		if grn.Status != model.GRNStatusAccepted && grn.Status != model.GRNStatusPartiallyAccepted {
			continue
		}
		c := *grn
		c.Items = r.loadItems(id)
		out = append(out, c)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *memGRNRepo) CountByPrefix(_ context.Context, prefix string) (int64, error) {
	var n int64
	for _, grn := range r.grns {
		if strings.HasPrefix(grn.GRNNumber, prefix) {
			n++
		}
	}
	return n, nil
}

// --- RFQs ---

type memRFQRepo struct {
	rfqs          map[uuid.UUID]*model.RFQ
	responses     map[uuid.UUID]*model.RFQResponse
	responseOrder map[uuid.UUID][]uuid.UUID
}

func newMemRFQRepo() *memRFQRepo {
	return &memRFQRepo{
		rfqs:          make(map[uuid.UUID]*model.RFQ),
		responses:     make(map[uuid.UUID]*model.RFQResponse),
		responseOrder: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (r *memRFQRepo) Create(_ context.Context, rfq *model.RFQ) error {
	if rfq.ID == uuid.Nil {
		rfq.ID = uuid.New()
	}
	for i := range rfq.Items {
		if rfq.Items[i].ID == uuid.Nil {
			rfq.Items[i].ID = uuid.New()
		}
		rfq.Items[i].RFQID = rfq.ID
	}
	c := *rfq
	c.Items = append([]model.RFQItem(nil), rfq.Items...)
	c.Vendors = append([]model.RFQVendor(nil), rfq.Vendors...)
	c.Responses = nil
	r.rfqs[rfq.ID] = &c
	return nil
}

func (r *memRFQRepo) Update(_ context.Context, rfq *model.RFQ) error {
	stored, ok := r.rfqs[rfq.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c := *rfq
	c.Items = stored.Items
	c.Vendors = stored.Vendors
	c.Responses = nil
	r.rfqs[rfq.ID] = &c
	return nil
}

func (r *memRFQRepo) FindByID(_ context.Context, id uuid.UUID) (*model.RFQ, error) {
	stored, ok := r.rfqs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *stored
	c.Items = append([]model.RFQItem(nil), stored.Items...)
	c.Vendors = append([]model.RFQVendor(nil), stored.Vendors...)
	c.Responses = nil
	for _, respID := range r.responseOrder[id] {
		if resp, ok := r.responses[respID]; ok {
			c.Responses = append(c.Responses, *resp)
		}
	}
	return &c, nil
}

func (r *memRFQRepo) List(_ context.Context, filter repository.RFQListFilter) ([]model.RFQ, int64, error) {
	var out []model.RFQ
	for _, rfq := range r.rfqs {
		if filter.Status != "" && rfq.Status != filter.Status {
			continue
		}
		out = append(out, *rfq)
	}
	return out, int64(len(out)), nil
}

func (r *memRFQRepo) ReplaceItems(_ context.Context, rfqID uuid.UUID, items []model.RFQItem) error {
	stored, ok := r.rfqs[rfqID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].RFQID = rfqID
	}
	stored.Items = append([]model.RFQItem(nil), items...)
	return nil
}

func (r *memRFQRepo) AddVendor(_ context.Context, invitation *model.RFQVendor) error {
	stored, ok := r.rfqs[invitation.RFQID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if invitation.ID == uuid.Nil {
		invitation.ID = uuid.New()
	}
	stored.Vendors = append(stored.Vendors, *invitation)
	return nil
}

func (r *memRFQRepo) FindVendor(_ context.Context, rfqID, vendorID uuid.UUID) (*model.RFQVendor, error) {
	stored, ok := r.rfqs[rfqID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for _, v := range stored.Vendors {
		if v.VendorID == vendorID {
			c := v
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memRFQRepo) CreateResponse(_ context.Context, response *model.RFQResponse) error {
	if response.ID == uuid.Nil {
		response.ID = uuid.New()
	}
	for i := range response.Items {
		if response.Items[i].ID == uuid.Nil {
			response.Items[i].ID = uuid.New()
		}
		response.Items[i].RFQResponseID = response.ID
	}
	c := *response
	c.Items = append([]model.RFQResponseItem(nil), response.Items...)
	r.responses[response.ID] = &c
	r.responseOrder[response.RFQID] = append(r.responseOrder[response.RFQID], response.ID)
	return nil
}

func (r *memRFQRepo) UpdateResponse(_ context.Context, response *model.RFQResponse) error {
	stored, ok := r.responses[response.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c := *response
	c.Items = stored.Items
	r.responses[response.ID] = &c
	return nil
}

func (r *memRFQRepo) FindResponseByID(_ context.Context, id uuid.UUID) (*model.RFQResponse, error) {
	resp, ok := r.responses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *resp
	c.Items = append([]model.RFQResponseItem(nil), resp.Items...)
	return &c, nil
}

func (r *memRFQRepo) FindResponseByVendor(_ context.Context, rfqID, vendorID uuid.UUID) (*model.RFQResponse, error) {
	for _, respID := range r.responseOrder[rfqID] {
		if resp, ok := r.responses[respID]; ok && resp.VendorID == vendorID {
			c := *resp
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memRFQRepo) ListResponses(_ context.Context, rfqID uuid.UUID) ([]model.RFQResponse, error) {
	var out []model.RFQResponse
	for _, respID := range r.responseOrder[rfqID] {
		if resp, ok := r.responses[respID]; ok {
			out = append(out, *resp)
		}
	}
	return out, nil
}

func (r *memRFQRepo) ReplaceResponseItems(_ context.Context, responseID uuid.UUID, items []model.RFQResponseItem) error {
	stored, ok := r.responses[responseID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].RFQResponseID = responseID
	}
	stored.Items = append([]model.RFQResponseItem(nil), items...)
	return nil
}

func (r *memRFQRepo) CountByPrefix(_ context.Context, prefix string) (int64, error) {
	var n int64
	for _, rfq := range r.rfqs {
		if strings.HasPrefix(rfq.RFQNumber, prefix) {
			n++
		}
	}
	return n, nil
}

// --- Vendor invoices ---

type memInvoiceRepo struct {
	invoices map[uuid.UUID]*model.VendorInvoice
	payments map[uuid.UUID][]model.InvoicePayment
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{
		invoices: make(map[uuid.UUID]*model.VendorInvoice),
		payments: make(map[uuid.UUID][]model.InvoicePayment),
	}
}

func (r *memInvoiceRepo) Create(_ context.Context, invoice *model.VendorInvoice) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	for i := range invoice.Items {
		if invoice.Items[i].ID == uuid.Nil {
			invoice.Items[i].ID = uuid.New()
		}
		invoice.Items[i].VendorInvoiceID = invoice.ID
	}
	c := *invoice
	c.Items = append([]model.VendorInvoiceItem(nil), invoice.Items...)
	c.Payments = nil
	r.invoices[invoice.ID] = &c
	return nil
}

func (r *memInvoiceRepo) Update(_ context.Context, invoice *model.VendorInvoice) error {
	stored, ok := r.invoices[invoice.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c := *invoice
	c.Items = stored.Items
	c.Payments = nil
	r.invoices[invoice.ID] = &c
	return nil
}

func (r *memInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.VendorInvoice, error) {
	stored, ok := r.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *stored
	c.Items = append([]model.VendorInvoiceItem(nil), stored.Items...)
	c.Payments = append([]model.InvoicePayment(nil), r.payments[id]...)
	return &c, nil
}

func (r *memInvoiceRepo) List(_ context.Context, filter repository.VendorInvoiceListFilter) ([]model.VendorInvoice, int64, error) {
	var out []model.VendorInvoice
	for _, inv := range r.invoices {
		if filter.MatchStatus != "" && inv.MatchStatus != filter.MatchStatus {
			continue
		}
		if filter.PaymentStatus != "" && inv.PaymentStatus != filter.PaymentStatus {
			continue
		}
		if filter.VendorID != nil && inv.VendorID != *filter.VendorID {
			continue
		}
		if filter.PurchaseOrderID != nil && (inv.PurchaseOrderID == nil || *inv.PurchaseOrderID != *filter.PurchaseOrderID) {
			continue
		}
		out = append(out, *inv)
	}
	return out, int64(len(out)), nil
}

func (r *memInvoiceRepo) CreatePayment(_ context.Context, payment *model.InvoicePayment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	r.payments[payment.VendorInvoiceID] = append(r.payments[payment.VendorInvoiceID], *payment)
	return nil
}
