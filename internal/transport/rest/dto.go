package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/heartmarshall/records-backend/internal/domain"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = time.DateOnly

var jsonNull = []byte("null")

// DepartmentJSON is a department on the wire. Budget is a decimal string.
type DepartmentJSON struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Budget          decimal.Decimal `json:"budget"`
	StartDate       string          `json:"start_date"`
	AdministratorID *int64          `json:"administrator_id"`
	Version         int64           `json:"version"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func NewDepartmentJSON(d domain.Department) DepartmentJSON {
	return DepartmentJSON{
		ID:              d.ID,
		Name:            d.Name,
		Budget:          d.Budget,
		StartDate:       d.StartDate.Format(DateLayout),
		AdministratorID: d.AdministratorID,
		Version:         d.Version,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// Domain converts back to a domain.Department.
func (j DepartmentJSON) Domain() (domain.Department, error) {
	start, err := time.Parse(DateLayout, j.StartDate)
	if err != nil {
		return domain.Department{}, fmt.Errorf("start_date: %w", err)
	}
	return domain.Department{
		ID:              j.ID,
		Name:            j.Name,
		Budget:          j.Budget,
		StartDate:       start,
		AdministratorID: j.AdministratorID,
		Version:         j.Version,
		CreatedAt:       j.CreatedAt,
		UpdatedAt:       j.UpdatedAt,
	}, nil
}

// DepartmentPatchJSON carries the fields a writer intends to change. An
// absent key leaves the field alone; administrator_id distinguishes an absent
// key from an explicit null, which clears the administrator.
type DepartmentPatchJSON struct {
	Name            *string          `json:"name,omitempty"       validate:"omitempty,max=50"`
	Budget          *decimal.Decimal `json:"budget,omitempty"`
	StartDate       *string          `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	AdministratorID json.RawMessage  `json:"administrator_id,omitempty"`
}

func NewDepartmentPatchJSON(p domain.DepartmentPatch) DepartmentPatchJSON {
	j := DepartmentPatchJSON{Name: p.Name, Budget: p.Budget}
	if p.StartDate != nil {
		s := p.StartDate.Format(DateLayout)
		j.StartDate = &s
	}
	switch {
	case p.ClearAdministrator:
		j.AdministratorID = jsonNull
	case p.AdministratorID != nil:
		j.AdministratorID = json.RawMessage(fmt.Sprintf("%d", *p.AdministratorID))
	}
	return j
}

// Domain converts the wire patch. Failures are *domain.ValidationError.
func (j DepartmentPatchJSON) Domain() (domain.DepartmentPatch, error) {
	p := domain.DepartmentPatch{Name: j.Name, Budget: j.Budget}

	if j.StartDate != nil {
		t, err := time.Parse(DateLayout, *j.StartDate)
		if err != nil {
			return domain.DepartmentPatch{}, domain.NewValidationError(domain.FieldStartDate, "must be a date formatted 2006-01-02")
		}
		p.StartDate = &t
	}

	if len(j.AdministratorID) > 0 {
		if bytes.Equal(bytes.TrimSpace(j.AdministratorID), jsonNull) {
			p.ClearAdministrator = true
		} else {
			var id int64
			if err := json.Unmarshal(j.AdministratorID, &id); err != nil {
				return domain.DepartmentPatch{}, domain.NewValidationError(domain.FieldAdministratorID, "must be an integer or null")
			}
			p.AdministratorID = &id
		}
	}

	return p, nil
}

// FieldConflictJSON is one conflicting field. Values use the same encoding
// as DepartmentJSON: strings for name, budget and start_date, a number or
// null for administrator_id.
type FieldConflictJSON struct {
	Field     string          `json:"field"`
	Attempted json.RawMessage `json:"attempted"`
	Current   json.RawMessage `json:"current"`
}

// ConflictJSON is the 409 body of a write rejected because the version moved.
type ConflictJSON struct {
	Error           string              `json:"error"`
	EntityType      string              `json:"entity_type"`
	ID              int64               `json:"id"`
	ExpectedVersion int64               `json:"expected_version"`
	CurrentVersion  int64               `json:"current_version"`
	Attempted       DepartmentPatchJSON `json:"attempted"`
	Current         DepartmentJSON      `json:"current"`
	Fields          []FieldConflictJSON `json:"fields"`
}

func NewConflictJSON(r *domain.ConflictReport) ConflictJSON {
	fields := make([]FieldConflictJSON, 0, len(r.Fields))
	for _, f := range r.Fields {
		fields = append(fields, FieldConflictJSON{
			Field:     f.Field,
			Attempted: encodeFieldValue(f.Attempted),
			Current:   encodeFieldValue(f.Current),
		})
	}
	return ConflictJSON{
		Error:           CodeVersionConflict,
		EntityType:      r.EntityType.String(),
		ID:              r.ID,
		ExpectedVersion: r.ExpectedVersion,
		CurrentVersion:  r.CurrentVersion,
		Attempted:       NewDepartmentPatchJSON(r.Attempted),
		Current:         NewDepartmentJSON(r.Current),
		Fields:          fields,
	}
}

// Report converts back to a domain.ConflictReport with typed field values.
func (j ConflictJSON) Report() (*domain.ConflictReport, error) {
	attempted, err := j.Attempted.Domain()
	if err != nil {
		return nil, fmt.Errorf("attempted: %w", err)
	}
	current, err := j.Current.Domain()
	if err != nil {
		return nil, fmt.Errorf("current: %w", err)
	}

	fields := make([]domain.FieldConflict, 0, len(j.Fields))
	for _, f := range j.Fields {
		a, err := decodeFieldValue(f.Field, f.Attempted)
		if err != nil {
			return nil, err
		}
		c, err := decodeFieldValue(f.Field, f.Current)
		if err != nil {
			return nil, err
		}
		fields = append(fields, domain.FieldConflict{Field: f.Field, Attempted: a, Current: c})
	}

	return &domain.ConflictReport{
		EntityType:      domain.EntityType(j.EntityType),
		ID:              j.ID,
		ExpectedVersion: j.ExpectedVersion,
		CurrentVersion:  j.CurrentVersion,
		Attempted:       attempted,
		Current:         current,
		Fields:          fields,
	}, nil
}

func encodeFieldValue(v any) json.RawMessage {
	if t, ok := v.(time.Time); ok {
		v = t.Format(DateLayout)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return jsonNull
	}
	return b
}

func decodeFieldValue(field string, raw json.RawMessage) (any, error) {
	if len(raw) == 0 || bytes.Equal(raw, jsonNull) {
		return nil, nil
	}

	var err error
	switch field {
	case domain.FieldName:
		var s string
		err = json.Unmarshal(raw, &s)
		if err == nil {
			return s, nil
		}
	case domain.FieldBudget:
		var d decimal.Decimal
		err = json.Unmarshal(raw, &d)
		if err == nil {
			return d, nil
		}
	case domain.FieldStartDate:
		var s string
		if err = json.Unmarshal(raw, &s); err == nil {
			var t time.Time
			t, err = time.Parse(DateLayout, s)
			if err == nil {
				return t, nil
			}
		}
	case domain.FieldAdministratorID:
		var id int64
		err = json.Unmarshal(raw, &id)
		if err == nil {
			return id, nil
		}
	default:
		return nil, fmt.Errorf("unknown conflict field %q", field)
	}
	return nil, fmt.Errorf("conflict field %s: %w", field, err)
}

// DependentJSON is one sampled dependent.
type DependentJSON struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// BlockJSON is the 409 body of a delete refused because dependents exist.
type BlockJSON struct {
	Error         string          `json:"error"`
	EntityType    string          `json:"entity_type"`
	ID            int64           `json:"id"`
	DependentType string          `json:"dependent_type"`
	Count         int             `json:"count"`
	Sample        []DependentJSON `json:"sample"`
}

func NewBlockJSON(b *domain.DependencyBlock) BlockJSON {
	sample := make([]DependentJSON, 0, len(b.Sample))
	for _, d := range b.Sample {
		sample = append(sample, DependentJSON{ID: d.ID, Label: d.Label})
	}
	return BlockJSON{
		Error:         CodeBlocked,
		EntityType:    b.EntityType.String(),
		ID:            b.ID,
		DependentType: b.DependentType.String(),
		Count:         b.Count,
		Sample:        sample,
	}
}

// Block converts back to a domain.DependencyBlock.
func (j BlockJSON) Block() *domain.DependencyBlock {
	sample := make([]domain.Dependent, 0, len(j.Sample))
	for _, d := range j.Sample {
		sample = append(sample, domain.Dependent{ID: d.ID, Label: d.Label})
	}
	return &domain.DependencyBlock{
		EntityType:    domain.EntityType(j.EntityType),
		ID:            j.ID,
		DependentType: domain.EntityType(j.DependentType),
		Count:         j.Count,
		Sample:        sample,
	}
}

// CreateDepartmentRequest is the body of POST /departments.
type CreateDepartmentRequest struct {
	Name            string          `json:"name"                       validate:"required,max=50"`
	Budget          decimal.Decimal `json:"budget"`
	StartDate       string          `json:"start_date"                 validate:"required,datetime=2006-01-02"`
	AdministratorID *int64          `json:"administrator_id,omitempty" validate:"omitempty,gt=0"`
}

// UpdateDepartmentRequest is the body of PATCH /departments/{id}. The
// expected version may instead come from If-Match or ?expected_version.
type UpdateDepartmentRequest struct {
	ExpectedVersion *int64 `json:"expected_version,omitempty" validate:"omitempty,gt=0"`
	DepartmentPatchJSON
}

// AuditRecordJSON is one history entry.
type AuditRecordJSON struct {
	ID         uuid.UUID      `json:"id"`
	EntityType string         `json:"entity_type"`
	EntityID   int64          `json:"entity_id"`
	Action     string         `json:"action"`
	Version    int64          `json:"version"`
	RequestID  string         `json:"request_id,omitempty"`
	Changes    map[string]any `json:"changes,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func newAuditRecordJSON(r domain.AuditRecord) AuditRecordJSON {
	return AuditRecordJSON{
		ID:         r.ID,
		EntityType: r.EntityType.String(),
		EntityID:   r.EntityID,
		Action:     r.Action.String(),
		Version:    r.Version,
		RequestID:  r.RequestID,
		Changes:    r.Changes,
		CreatedAt:  r.CreatedAt,
	}
}

// CourseJSON is a course on the wire.
type CourseJSON struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Credits      int       `json:"credits"`
	DepartmentID int64     `json:"department_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func newCourseJSON(c domain.Course) CourseJSON {
	return CourseJSON{
		ID:           c.ID,
		Title:        c.Title,
		Credits:      c.Credits,
		DepartmentID: c.DepartmentID,
		CreatedAt:    c.CreatedAt,
	}
}

// CreateCourseRequest is the body of POST /courses.
type CreateCourseRequest struct {
	ID           int64  `json:"id"            validate:"required,gt=0"`
	Title        string `json:"title"         validate:"required,max=50"`
	Credits      int    `json:"credits"       validate:"gte=0,lte=5"`
	DepartmentID int64  `json:"department_id" validate:"required,gt=0"`
}

// UpdateCourseRequest is the body of PATCH /courses/{id}. Setting
// department_id reassigns the course.
type UpdateCourseRequest struct {
	Title        *string `json:"title,omitempty"         validate:"omitempty,max=50"`
	Credits      *int    `json:"credits,omitempty"       validate:"omitempty,gte=0,lte=5"`
	DepartmentID *int64  `json:"department_id,omitempty" validate:"omitempty,gt=0"`
}

// InstructorJSON is an instructor on the wire.
type InstructorJSON struct {
	ID        int64     `json:"id"`
	LastName  string    `json:"last_name"`
	FirstName string    `json:"first_name"`
	FullName  string    `json:"full_name"`
	HireDate  string    `json:"hire_date"`
	CreatedAt time.Time `json:"created_at"`
}

func newInstructorJSON(i domain.Instructor) InstructorJSON {
	return InstructorJSON{
		ID:        i.ID,
		LastName:  i.LastName,
		FirstName: i.FirstName,
		FullName:  i.FullName(),
		HireDate:  i.HireDate.Format(DateLayout),
		CreatedAt: i.CreatedAt,
	}
}

// CreateInstructorRequest is the body of POST /instructors.
type CreateInstructorRequest struct {
	LastName  string `json:"last_name"  validate:"required,max=50"`
	FirstName string `json:"first_name" validate:"required,max=50"`
	HireDate  string `json:"hire_date"  validate:"required,datetime=2006-01-02"`
}
