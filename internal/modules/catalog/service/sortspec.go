package catalog

import (
	"fmt"
	"strings"

	courseRepo "anoa.com/elearning/internal/modules/course/repository"
	"anoa.com/elearning/pkg/apperror"
)

var sortFieldsByName = map[string]courseRepo.SortField{}

func init() {
	for _, f := range []courseRepo.SortField{
		courseRepo.SortID,
		courseRepo.SortName,
		courseRepo.SortPrice,
		courseRepo.SortPercentDiscount,
		courseRepo.SortViewCount,
		courseRepo.SortCreatedAt,
		courseRepo.SortUpdatedAt,
		courseRepo.SortAverageRating,
		courseRepo.SortNumberOfReviews,
	} {
		sortFieldsByName[strings.ToLower(string(f))] = f
	}
	// "view" is what the listing payload calls the counter.
	sortFieldsByName["view"] = courseRepo.SortViewCount
}

// ParseSortSpec turns "field.dir,field.dir" into sort keys. The direction may
// be omitted (ascending). A field listed twice keeps its first position.
// An ascending id key closes every result so paging stays stable.
func ParseSortSpec(spec string) ([]courseRepo.SortKey, error) {
	keys := make([]courseRepo.SortKey, 0, 4)
	seen := make(map[courseRepo.SortField]bool)

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, dir, _ := strings.Cut(part, ".")
		field, ok := sortFieldsByName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown sort field %q: %w", name, apperror.ErrInvalidInput)
		}

		var desc bool
		switch strings.ToLower(strings.TrimSpace(dir)) {
		case "", "asc":
		case "desc":
			desc = true
		default:
			return nil, fmt.Errorf("unknown sort direction %q: %w", dir, apperror.ErrInvalidInput)
		}

		if seen[field] {
			continue
		}
		seen[field] = true
		keys = append(keys, courseRepo.SortKey{Field: field, Desc: desc})
	}

	if !seen[courseRepo.SortID] {
		keys = append(keys, courseRepo.SortKey{Field: courseRepo.SortID})
	}
	return keys, nil
}
