package classify

import "github.com/productlens/backend/internal/storage/models"

// departmentTagTypes lists the tag types that make sense for a top-level
// department. Matched tags of other types are pruned once the primary
// category is known. Departments absent from the table allow every type.
var departmentTagTypes = map[string][]models.TagType{
	"Electronics": {
		models.TagColors, models.TagFeatures,
	},
	"Home & Garden": {
		models.TagColors, models.TagMaterials, models.TagStyles, models.TagFeatures,
	},
	"Sports & Outdoors": {
		models.TagColors, models.TagMaterials, models.TagActivities, models.TagFeatures, models.TagFit,
	},
	"Beauty & Personal Care": {
		models.TagFeatures, models.TagOccasions,
	},
}

// pruneTagsForDepartment drops tags whose type the department disallows.
func pruneTagsForDepartment(tags []TagMatch, department string) []TagMatch {
	allowed, ok := departmentTagTypes[department]
	if !ok {
		return tags
	}

	allowedSet := make(map[models.TagType]bool, len(allowed))
	for _, t := range allowed {
		allowedSet[t] = true
	}

	var kept []TagMatch
	for _, tag := range tags {
		if allowedSet[tag.Type] {
			kept = append(kept, tag)
		}
	}
	return kept
}

// groupTagsByType rebuilds the type-grouped view of a tag list.
func groupTagsByType(tags []TagMatch) map[models.TagType][]TagMatch {
	grouped := make(map[models.TagType][]TagMatch)
	for _, tag := range tags {
		grouped[tag.Type] = append(grouped[tag.Type], tag)
	}
	return grouped
}
