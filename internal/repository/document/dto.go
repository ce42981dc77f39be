package document

import (
	"encoding/json"

	domdoc "github.com/pickstack/itemsearch/internal/domain/document"
	"github.com/pickstack/itemsearch/internal/domain/document/product"
)

// docJSON mirrors the stored document shape. Embedding and products are
// kept raw so a malformed field (scalar embedding, products as a list)
// hydrates to an unrankable document instead of failing the whole scan.
type docJSON struct {
	Embedding      json.RawMessage `json:"embedding,omitempty"`
	StructuredData *structuredJSON `json:"structured_data,omitempty"`
	UserInfo       *userInfoJSON   `json:"user_info,omitempty"`
}

type structuredJSON struct {
	Products json.RawMessage `json:"products,omitempty"`
}

type userInfoJSON struct {
	UserID         string `json:"user_id,omitempty"`
	UserName       string `json:"user_name,omitempty"`
	PickUpLocation string `json:"pick_up_location,omitempty"`
}

type productJSON struct {
	PickUpTime      *string  `json:"pick_up_time,omitempty"`
	DropOffLocation *string  `json:"drop_off_location,omitempty"`
	DropOffTime     *string  `json:"drop_off_time,omitempty"`
	PickUpLocation  *string  `json:"pick_up_location,omitempty"`
	Quantity        *float64 `json:"quantity,omitempty"`
	Price           *float64 `json:"price,omitempty"`
}

// parseDoc hydrates one stored document. It never fails: any malformed
// part degrades to the corresponding unset/nil field and the document is
// gated later by Rankable.
func parseDoc(id string, raw []byte) domdoc.Document {
	var dto docJSON
	if err := json.Unmarshal(raw, &dto); err != nil {
		return domdoc.Reconstruct(id, nil, nil, domdoc.UserInfo{})
	}

	var embedding []float32
	if len(dto.Embedding) > 0 {
		// A non-sequence embedding leaves the slice nil.
		_ = json.Unmarshal(dto.Embedding, &embedding)
	}

	var products map[string]product.Record
	if dto.StructuredData != nil && len(dto.StructuredData.Products) > 0 {
		var prods map[string]productJSON
		if err := json.Unmarshal(dto.StructuredData.Products, &prods); err == nil {
			products = make(map[string]product.Record, len(prods))
			for name, p := range prods {
				products[name] = product.New(
					p.PickUpTime, p.DropOffLocation, p.DropOffTime, p.PickUpLocation,
					p.Quantity, p.Price,
				)
			}
		}
	}

	var userInfo domdoc.UserInfo
	if dto.UserInfo != nil {
		userInfo = domdoc.UserInfo{
			UserID:         dto.UserInfo.UserID,
			UserName:       dto.UserInfo.UserName,
			PickUpLocation: dto.UserInfo.PickUpLocation,
		}
	}

	return domdoc.Reconstruct(id, embedding, products, userInfo)
}

// buildJSONDoc converts a domain Document into its stored shape.
func buildJSONDoc(doc *domdoc.Document) docJSON {
	emb, _ := json.Marshal(doc.Embedding())

	prods := make(map[string]productJSON, len(doc.Products()))
	for name, rec := range doc.Products() {
		prods[name] = productJSON{
			PickUpTime:      rec.PickUpTime(),
			DropOffLocation: rec.DropOffLocation(),
			DropOffTime:     rec.DropOffTime(),
			PickUpLocation:  rec.PickUpLocation(),
			Quantity:        rec.Quantity(),
			Price:           rec.Price(),
		}
	}
	prodsRaw, _ := json.Marshal(prods)

	ui := doc.UserInfo()
	return docJSON{
		Embedding:      emb,
		StructuredData: &structuredJSON{Products: prodsRaw},
		UserInfo: &userInfoJSON{
			UserID:         ui.UserID,
			UserName:       ui.UserName,
			PickUpLocation: ui.PickUpLocation,
		},
	}
}
