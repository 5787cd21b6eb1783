package caserecord

import (
	"github.com/brianvoe/gofakeit/v6"

	"github.com/CodeTanzania/ewea-case/internal/predefine"
	"github.com/CodeTanzania/ewea-case/internal/schema"
)

// Definition is the declarative shape of the Case record. It drives
// the schema endpoint, the CSV export columns and fake seed records.
func Definition() *schema.Definition {
	return schema.Define("Case",
		schema.Field{
			Name: "number", Type: schema.String,
			Required: true, Trim: true, Uppercase: true,
			Index: true, Unique: true, Searchable: true, Taggable: true,
			Export: &schema.Export{Header: "Number", Order: 1, Default: "NA"},
		},
		schema.Field{
			Name: "stage", Type: schema.Ref, Ref: predefine.NamespaceCaseStage,
			Index: true, Taggable: true,
			Export: &schema.Export{Header: "Stage", Order: 2, Default: "NA"},
		},
		schema.Field{
			Name: "severity", Type: schema.Ref, Ref: predefine.NamespaceCaseSeverity,
			Index: true, Taggable: true,
			Export: &schema.Export{Header: "Severity", Order: 3, Default: "NA"},
		},
		schema.Field{
			Name: "victim", Type: schema.Object, Fields: []schema.Field{
				{
					Name: "referral", Type: schema.String, Trim: true, Searchable: true,
					Export: &schema.Export{Header: "Referral", Order: 4, Default: "NA"},
					Fake:   func() interface{} { return gofakeit.LetterN(3) + "-" + gofakeit.DigitN(4) },
				},
				{
					Name: "pcr", Type: schema.String, Trim: true, Searchable: true,
					Export: &schema.Export{Header: "PCR", Order: 5, Default: "NA"},
					Fake:   func() interface{} { return "PCR-" + gofakeit.DigitN(4) },
				},
				{
					Name: "name", Type: schema.String, Trim: true, Index: true, Searchable: true, Taggable: true,
					Export: &schema.Export{Header: "Victim Name", Order: 6, Default: "NA"},
					Fake:   func() interface{} { return gofakeit.Name() },
				},
				{
					Name: "mobile", Type: schema.String, Trim: true, Index: true, Searchable: true, Taggable: true,
					Export: &schema.Export{Header: "Victim Mobile", Order: 7, Default: "NA"},
					Fake:   func() interface{} { return "2557" + gofakeit.DigitN(8) },
				},
				{
					Name: "email", Type: schema.String, Trim: true, Searchable: true,
					Export: &schema.Export{Header: "Victim Email", Order: 8, Default: "NA"},
					Fake:   func() interface{} { return gofakeit.Email() },
				},
				{
					Name: "gender", Type: schema.Ref, Ref: predefine.NamespacePartyGender,
					Index: true, Taggable: true,
					Export: &schema.Export{Header: "Gender", Order: 9, Default: "NA"},
				},
				{
					Name: "age", Type: schema.Number, Index: true,
					Export: &schema.Export{Header: "Age", Order: 10, Default: "NA"},
					Fake:   func() interface{} { return gofakeit.Number(1, 90) },
				},
				{
					Name: "weight", Type: schema.Number, Index: true,
					Export: &schema.Export{Header: "Weight", Order: 11, Default: "NA"},
					Fake:   func() interface{} { return gofakeit.Number(30, 120) },
				},
				{
					Name: "occupation", Type: schema.Ref, Ref: predefine.NamespacePartyOccupation,
					Index: true, Taggable: true,
					Export: &schema.Export{Header: "Occupation", Order: 12, Default: "NA"},
				},
				{
					Name: "nationality", Type: schema.Ref, Ref: predefine.NamespacePartyNationality,
					Index: true, Taggable: true,
					Export: &schema.Export{Header: "Nationality", Order: 13, Default: "NA"},
				},
				{
					Name: "address", Type: schema.String, Trim: true, Index: true, Searchable: true, Taggable: true,
					Export: &schema.Export{Header: "Address", Order: 14, Default: "NA"},
					Fake:   func() interface{} { return gofakeit.City() },
				},
				{
					Name: "area", Type: schema.Ref, Ref: predefine.NamespaceAdministrativeArea,
					Index: true, Taggable: true,
					Export: &schema.Export{Header: "Area", Order: 15, Default: "NA"},
				},
				{
					Name: "nextOfKin", Type: schema.Object, Fields: []schema.Field{
						{
							Name: "name", Type: schema.String, Trim: true, Searchable: true,
							Export: &schema.Export{Header: "Next of Kin Name", Order: 16, Default: "NA"},
							Fake:   func() interface{} { return gofakeit.Name() },
						},
						{
							Name: "mobile", Type: schema.String, Trim: true, Searchable: true,
							Export: &schema.Export{Header: "Next of Kin Mobile", Order: 17, Default: "NA"},
							Fake:   func() interface{} { return "2557" + gofakeit.DigitN(8) },
						},
						{Name: "email", Type: schema.String, Trim: true},
						{Name: "locale", Type: schema.String, Trim: true},
					},
				},
			},
		},
		schema.Field{
			Name: "description", Type: schema.String, Trim: true, Index: true, Searchable: true,
			Export: &schema.Export{Header: "Description", Order: 18, Default: "NA"},
			Fake:   func() interface{} { return gofakeit.Sentence(8) },
		},
		schema.Field{
			Name: "reportedAt", Type: schema.Date, Index: true,
			Export: &schema.Export{Header: "Reported At", Order: 19, Default: "NA"},
		},
		schema.Field{
			Name: "reporter", Type: schema.Ref, Ref: "Party", Index: true,
			Export: &schema.Export{Header: "Reporter", Order: 20, Default: "NA"},
		},
		schema.Field{
			Name: "resolvedAt", Type: schema.Date, Index: true,
			Export: &schema.Export{Header: "Resolved At", Order: 21, Default: "NA"},
		},
		schema.Field{
			Name: "resolver", Type: schema.Ref, Ref: "Party", Index: true,
			Export: &schema.Export{Header: "Resolver", Order: 22, Default: "NA"},
		},
		schema.Field{
			Name: "followup", Type: schema.Object, Fields: []schema.Field{
				{
					Name: "follower", Type: schema.Ref, Ref: "Party", Index: true,
					Export: &schema.Export{Header: "Follower", Order: 23, Default: "NA"},
				},
				{
					Name: "followedAt", Type: schema.Date, Index: true,
					Export: &schema.Export{Header: "Followed At", Order: 24, Default: "NA"},
				},
				{Name: "symptoms", Type: schema.Map},
				{
					Name: "score", Type: schema.Number, Index: true,
					Export: &schema.Export{Header: "Score", Order: 25, Default: "NA"},
				},
				{
					Name: "outcome", Type: schema.String, Trim: true, Searchable: true,
					Export: &schema.Export{Header: "Outcome", Order: 26, Default: "NA"},
				},
				{Name: "remarks", Type: schema.String, Trim: true, Searchable: true},
			},
		},
		schema.Field{
			Name: "remarks", Type: schema.String, Trim: true, Index: true, Searchable: true,
			Export: &schema.Export{Header: "Remarks", Order: 27, Default: "NA"},
			Fake:   func() interface{} { return gofakeit.Sentence(6) },
		},
	)
}
