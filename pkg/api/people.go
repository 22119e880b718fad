package api

// Name представляет имя контакта в People API
type Name struct {
	DisplayName string `json:"displayName"`
	GivenName   string `json:"givenName,omitempty"`
	FamilyName  string `json:"familyName,omitempty"`
}

// EmailAddress представляет email контакта
type EmailAddress struct {
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
}

// PhoneNumber представляет телефон контакта
type PhoneNumber struct {
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
}

// Source описывает источник данных профиля
type Source struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// PersonMetadata содержит метаданные профиля
type PersonMetadata struct {
	Sources []Source `json:"sources,omitempty"`
}

// Person представляет запись people/* в People API
type Person struct {
	ResourceName   string          `json:"resourceName"`
	Etag           string          `json:"etag,omitempty"`
	Names          []Name          `json:"names,omitempty"`
	EmailAddresses []EmailAddress  `json:"emailAddresses,omitempty"`
	PhoneNumbers   []PhoneNumber   `json:"phoneNumbers,omitempty"`
	Metadata       *PersonMetadata `json:"metadata,omitempty"`
}

// ListConnectionsResponse представляет одну страницу people/me/connections
type ListConnectionsResponse struct {
	NextPageToken string   `json:"nextPageToken,omitempty"`
	Connections   []Person `json:"connections,omitempty"`
	TotalPeople   int      `json:"totalPeople,omitempty"`
	TotalItems    int      `json:"totalItems,omitempty"`
}

// ErrorResponse представляет ошибку Google API
type ErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Status  string `json:"status"`
		Code    int    `json:"code"`
	} `json:"error"`
}
