package query

// Authors is the allow-list for /api/authors/ with table alias "a".
var Authors = Spec{
	Filters: []FilterDef{
		{Param: "nationality", Kind: KindText, Cond: "a.nationality = %s"},
		{Param: "birth_date", Kind: KindDate, Cond: "a.birth_date = %s"},
	},
	SearchCols: []string{"a.first_name", "a.last_name", "a.nationality", "a.biography"},
	Orderable: map[string]string{
		"id":         "a.id",
		"last_name":  "a.last_name",
		"first_name": "a.first_name",
		"created_at": "a.created_at",
		"updated_at": "a.updated_at",
	},
	DefaultOrder: []Order{{Field: "first_name"}, {Field: "last_name"}},
	IDColumn:     "a.id",
}

// Books is the allow-list for /api/books/ with table alias "b".
var Books = Spec{
	Filters: []FilterDef{
		{Param: "language", Kind: KindLanguage, Cond: "b.language = %s"},
		{Param: "authors__id", Kind: KindID, Cond: "EXISTS (SELECT 1 FROM book_authors fa WHERE fa.book_id = b.id AND fa.author_id = %s)"},
		{Param: "publication_date", Kind: KindDate, Cond: "b.publication_date = %s"},
	},
	SearchCols: []string{"b.title", "b.description"},
	Orderable: map[string]string{
		"id":               "b.id",
		"title":            "b.title",
		"publication_date": "b.publication_date",
		"page_count":       "b.page_count",
		"created_at":       "b.created_at",
	},
	DefaultOrder: []Order{{Field: "title"}},
	IDColumn:     "b.id",
}
