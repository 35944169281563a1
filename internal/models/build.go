package models

// Build is the shareable build document. Field names are the wire format
// handed to the share code codec, so nothing derived belongs here.
type Build struct {
	Title               string  `json:"title" validate:"max=128"`
	AssociatedMaps      []int   `json:"associatedMaps"`
	AssociatedChampions []int   `json:"associatedChampions"`
	Blocks              []Block `json:"blocks" validate:"required,dive"`
}

// Block is one titled, ordered group of items within a build
type Block struct {
	ID       string      `json:"id" validate:"required"`
	Position int         `json:"position" validate:"min=0"`
	Type     string      `json:"type" validate:"max=64"`
	Items    []BuildItem `json:"items" validate:"dive"`
}

// BuildItem is one placed occurrence of a catalog item. ID identifies the
// occurrence; ItemID references the catalog.
type BuildItem struct {
	ID     string `json:"id" validate:"required"`
	ItemID string `json:"itemId" validate:"required,number"`
	Count  int    `json:"count" validate:"min=1"`
}

// ItemSet is the League client item set format
type ItemSet struct {
	Title               string         `json:"title"`
	Type                string         `json:"type"`
	Map                 string         `json:"map"`
	Mode                string         `json:"mode"`
	AssociatedMaps      []int          `json:"associatedMaps"`
	AssociatedChampions []int          `json:"associatedChampions"`
	Blocks              []ItemSetBlock `json:"blocks"`
}

// ItemSetBlock is a block in the client item set format
type ItemSetBlock struct {
	Type  string        `json:"type"`
	Items []ItemSetItem `json:"items"`
}

// ItemSetItem references a catalog item by id in the client format
type ItemSetItem struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// EncodeResponse is the response body of the encode endpoint
type EncodeResponse struct {
	Code string `json:"code"`
}
