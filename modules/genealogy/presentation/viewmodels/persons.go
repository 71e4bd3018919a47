package viewmodels

type Person struct {
	ID           string `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	DisplayName  string `json:"display_name"`
	Gender       string `json:"gender"`
	BirthDate    string `json:"birth_date,omitempty"`
	DeathDate    string `json:"death_date,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
	BirthSurname string `json:"birth_surname,omitempty"`
	Nickname     string `json:"nickname,omitempty"`
}

type Relationship struct {
	ID         string `json:"id"`
	Person1ID  string `json:"person1_id"`
	Person2ID  string `json:"person2_id"`
	Type       string `json:"type"`
	ParentRole string `json:"parent_role,omitempty"`
}

type DuplicateCandidate struct {
	Person1        DuplicatePerson `json:"person1"`
	Person2        DuplicatePerson `json:"person2"`
	Confidence     int             `json:"confidence"`
	MatchingFields []string        `json:"matching_fields"`
}

type DuplicatePerson struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	BirthDate   string `json:"birth_date,omitempty"`
}

type MergeValidation struct {
	Errors         []string `json:"errors"`
	Warnings       []string `json:"warnings"`
	ConflictFields []string `json:"conflict_fields"`
}

type MergePreview struct {
	CanMerge                bool            `json:"can_merge"`
	Validation              MergeValidation `json:"validation"`
	Source                  Person          `json:"source"`
	Target                  Person          `json:"target"`
	Merged                  Person          `json:"merged"`
	RelationshipsToTransfer []Relationship  `json:"relationships_to_transfer"`
	ExistingRelationships   []Relationship  `json:"existing_relationships"`
}

type MergeResult struct {
	Success                  bool   `json:"success"`
	SourceID                 string `json:"source_id"`
	TargetID                 string `json:"target_id"`
	RelationshipsTransferred int    `json:"relationships_transferred"`
	MergedData               Person `json:"merged_data"`
}

type ImportSummary struct {
	PersonsImported      int      `json:"persons_imported"`
	PersonsMerged        int      `json:"persons_merged"`
	PersonsSkipped       int      `json:"persons_skipped"`
	FamiliesProcessed    int      `json:"families_processed"`
	RelationshipsCreated int      `json:"relationships_created"`
	Errors               []string `json:"errors,omitempty"`
	Warnings             []string `json:"warnings,omitempty"`
}
