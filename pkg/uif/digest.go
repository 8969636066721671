package uif

import "github.com/metaarchitect/research-engine/pkg/models"

// Digest lists each angle with the statements of the facts it cites. Indices that do not
// resolve to a fact with a statement are skipped.
func Digest(doc any) []models.AngleDigest {
	root, err := Normalize(doc)
	if err != nil {
		return []models.AngleDigest{}
	}

	angles, _ := root["angles"].([]any)
	coreKnowledge, _ := object(root["core_knowledge"])
	facts, _ := coreKnowledge["facts"].([]any)

	digest := make([]models.AngleDigest, 0, len(angles))

	for i, raw := range angles {
		angle, _ := object(raw)

		entry := models.AngleDigest{
			Index:          i,
			AngleName:      models.StringField(angle, "angle_name"),
			ContrarianTake: models.StringField(angle, "contrarian_take"),
			Facts:          []string{},
		}

		refs, _ := angle["supporting_facts"].([]any)
		for _, ref := range refs {
			idx, ok := integer(ref)
			if !ok || idx < 0 || idx >= int64(len(facts)) {
				continue
			}

			fact, _ := object(facts[idx])
			if statement := models.StringField(fact, "statement"); statement != "" {
				entry.Facts = append(entry.Facts, statement)
			}
		}

		digest = append(digest, entry)
	}

	return digest
}
