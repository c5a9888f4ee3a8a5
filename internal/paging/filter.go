package paging

import (
	"sort"
	"strconv"
	"strings"

	apperr "github.com/aevon-lab/project-vitals/internal/core/errors"
	"github.com/google/uuid"
)

// MedicalResourceType selects one family of medical resources.
// Values are persisted inside page tokens and must never be renumbered.
type MedicalResourceType int

const (
	MedicalResourceTypeUnknown MedicalResourceType = iota
	MedicalResourceTypeVaccines
	MedicalResourceTypeAllergiesIntolerances
	MedicalResourceTypePregnancy
	MedicalResourceTypeSocialHistory
	MedicalResourceTypeVitalSigns
	MedicalResourceTypeLaboratoryResults
	MedicalResourceTypeConditions
	MedicalResourceTypeProcedures
	MedicalResourceTypeMedications
	MedicalResourceTypePersonalDetails
	MedicalResourceTypePractitionerDetails
	MedicalResourceTypeVisits
)

var medicalResourceTypeNames = map[MedicalResourceType]string{
	MedicalResourceTypeVaccines:              "VACCINES",
	MedicalResourceTypeAllergiesIntolerances: "ALLERGIES_INTOLERANCES",
	MedicalResourceTypePregnancy:             "PREGNANCY",
	MedicalResourceTypeSocialHistory:         "SOCIAL_HISTORY",
	MedicalResourceTypeVitalSigns:            "VITAL_SIGNS",
	MedicalResourceTypeLaboratoryResults:     "LABORATORY_RESULTS",
	MedicalResourceTypeConditions:            "CONDITIONS",
	MedicalResourceTypeProcedures:            "PROCEDURES",
	MedicalResourceTypeMedications:           "MEDICATIONS",
	MedicalResourceTypePersonalDetails:       "PERSONAL_DETAILS",
	MedicalResourceTypePractitionerDetails:   "PRACTITIONER_DETAILS",
	MedicalResourceTypeVisits:                "VISITS",
}

// Valid reports whether t is a currently recognized resource type.
func (t MedicalResourceType) Valid() bool {
	_, ok := medicalResourceTypeNames[t]
	return ok
}

func (t MedicalResourceType) String() string {
	if name, ok := medicalResourceTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN(" + strconv.Itoa(int(t)) + ")"
}

// ParseMedicalResourceType accepts either the numeric value or the name.
func ParseMedicalResourceType(s string) (MedicalResourceType, error) {
	if n, err := strconv.Atoi(s); err == nil {
		t := MedicalResourceType(n)
		if !t.Valid() {
			return 0, apperr.Validationf("resource_type", "unknown medical resource type %d", n)
		}
		return t, nil
	}
	for t, name := range medicalResourceTypeNames {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}
	return 0, apperr.Validationf("resource_type", "unknown medical resource type %q", s)
}

// ReadFilter is the echoed filter of a paged medical read: one resource type
// and an optional set of data source ids. It can only be built through
// NewReadFilter so decoded tokens get the same checks as fresh requests.
type ReadFilter struct {
	resourceType  MedicalResourceType
	dataSourceIDs []string // sorted, unique, canonical lower-case UUIDs
}

// NewReadFilter validates the resource type and every data source id.
func NewReadFilter(resourceType MedicalResourceType, dataSourceIDs []string) (ReadFilter, error) {
	if !resourceType.Valid() {
		return ReadFilter{}, apperr.Validationf("resource_type", "unknown medical resource type %d", resourceType)
	}
	ids := make([]string, 0, len(dataSourceIDs))
	seen := make(map[string]bool, len(dataSourceIDs))
	for _, raw := range dataSourceIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return ReadFilter{}, apperr.Validationf("data_source_ids", "invalid data source id %q", raw)
		}
		canonical := id.String()
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		ids = append(ids, canonical)
	}
	sort.Strings(ids)
	return ReadFilter{resourceType: resourceType, dataSourceIDs: ids}, nil
}

// ResourceType is the selected resource type.
func (f ReadFilter) ResourceType() MedicalResourceType { return f.resourceType }

// DataSourceIDs returns a copy of the id set in canonical order.
// Empty means all data sources.
func (f ReadFilter) DataSourceIDs() []string {
	return append([]string(nil), f.dataSourceIDs...)
}

// Equal compares type and id set.
func (f ReadFilter) Equal(o ReadFilter) bool {
	if f.resourceType != o.resourceType || len(f.dataSourceIDs) != len(o.dataSourceIDs) {
		return false
	}
	for i := range f.dataSourceIDs {
		if f.dataSourceIDs[i] != o.dataSourceIDs[i] {
			return false
		}
	}
	return true
}
