package engine

import (
	"fmt"
	"strings"

	"github.com/gsfdstack/gsfd-analysis/internal/models"
	"github.com/gsfdstack/gsfd-analysis/internal/utils"
)

// Role is the aggregation bucket a Record field belongs to.
type Role int

const (
	RoleUnassigned Role = iota
	RoleXAxis
	RoleKeep
	RoleSame
	RoleDifferentiate
	RoleStatistic
)

func (r Role) String() string {
	switch r {
	case RoleXAxis:
		return "x"
	case RoleKeep:
		return "keep"
	case RoleSame:
		return "same"
	case RoleDifferentiate:
		return "differentiate"
	case RoleStatistic:
		return "statistics"
	default:
		return "unassigned"
	}
}

// reducedFields are the statistics the Aggregator reduces per group.
var reducedFields = []models.Field{
	models.FieldCorrect,
	models.FieldDetectTimeAverage,
	models.FieldRateDetectedCrashes,
	models.FieldNDuplicatedReportedCrashes,
	models.FieldNWronglyReportedCrashes,
}

// UnclassifiedFieldError lists Record fields that a layout leaves unassigned.
type UnclassifiedFieldError struct {
	Layout string
	Fields []models.Field
}

func (e *UnclassifiedFieldError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.String()
	}
	return fmt.Sprintf("layout %q: fields neither aggregated nor ignored: %s", e.Layout, strings.Join(names, ", "))
}

// Is matches utils.ErrUnclassifiedField.
func (e *UnclassifiedFieldError) Is(target error) bool {
	return target == utils.ErrUnclassifiedField
}

// Layout is a resolved LayoutSpec: one Role per Record field.
type Layout struct {
	name  string
	roles [models.NumFields]Role
	x     []models.Field
	same  []models.Field
	diff  []models.Field
}

// NewLayout resolves field names. Unknown names and fields listed in two
// buckets are rejected here; fields listed nowhere are reported by Validate.
func NewLayout(spec models.LayoutSpec) (*Layout, error) {
	l := &Layout{name: spec.Name}
	buckets := []struct {
		role  Role
		names []string
		dst   *[]models.Field
	}{
		{RoleXAxis, spec.XAxis, &l.x},
		{RoleKeep, spec.Keep, nil},
		{RoleSame, spec.Same, &l.same},
		{RoleDifferentiate, spec.Differentiate, &l.diff},
		{RoleStatistic, spec.Statistics, nil},
	}
	for _, b := range buckets {
		for _, name := range b.names {
			f, err := models.ParseField(name)
			if err != nil {
				return nil, fmt.Errorf("layout %q: %w: %s", spec.Name, utils.ErrUnknownField, name)
			}
			switch prev := l.roles[f]; {
			case prev == b.role:
				continue
			case prev != RoleUnassigned:
				return nil, fmt.Errorf("layout %q: %w: %s is in both %s and %s", spec.Name, utils.ErrAmbiguousField, name, prev, b.role)
			}
			l.roles[f] = b.role
			if b.dst != nil {
				*b.dst = append(*b.dst, f)
			}
		}
	}
	for _, f := range reducedFields {
		if r := l.roles[f]; r != RoleStatistic && r != RoleUnassigned {
			return nil, fmt.Errorf("layout %q: %w: reduced statistic %s classified as %s", spec.Name, utils.ErrAmbiguousField, f, r)
		}
	}
	return l, nil
}

// Name returns the layout name.
func (l *Layout) Name() string { return l.name }

// Role returns the bucket of f.
func (l *Layout) Role(f models.Field) Role { return l.roles[f] }

// XAxis returns the x-axis dimensions.
func (l *Layout) XAxis() []models.Field { return append([]models.Field(nil), l.x...) }

// Same returns the dimensions plotted as separate series on one chart.
func (l *Layout) Same() []models.Field { return append([]models.Field(nil), l.same...) }

// Differentiate returns the dimensions that split output into separate charts.
func (l *Layout) Differentiate() []models.Field { return append([]models.Field(nil), l.diff...) }

// GroupBy returns x, same and differentiate dimensions in that order.
func (l *Layout) GroupBy() []models.Field {
	dims := make([]models.Field, 0, len(l.x)+len(l.same)+len(l.diff))
	dims = append(dims, l.x...)
	dims = append(dims, l.same...)
	return append(dims, l.diff...)
}

// Validate returns an *UnclassifiedFieldError when some Record field has no role.
func (l *Layout) Validate() error {
	var missing []models.Field
	for i, r := range l.roles {
		if r == RoleUnassigned {
			missing = append(missing, models.Field(i))
		}
	}
	if len(missing) > 0 {
		return &UnclassifiedFieldError{Layout: l.name, Fields: missing}
	}
	return nil
}

// BuildLayouts resolves and validates every spec, keeping their order.
func BuildLayouts(specs []models.LayoutSpec) ([]*Layout, error) {
	layouts := make([]*Layout, 0, len(specs))
	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("layout without a name")
		}
		if _, dup := seen[spec.Name]; dup {
			return nil, fmt.Errorf("layout %q defined twice", spec.Name)
		}
		seen[spec.Name] = struct{}{}
		layout, err := NewLayout(spec)
		if err != nil {
			return nil, err
		}
		if err := layout.Validate(); err != nil {
			return nil, err
		}
		layouts = append(layouts, layout)
	}
	return layouts, nil
}
