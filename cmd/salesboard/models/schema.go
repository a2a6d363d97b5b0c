package models

// SaleField pairs a sales column with the storage type name reported by the schema endpoint.
type SaleField struct {
	Name string
	Type string
}

// SaleFields lists the columns of the sales table in declaration order.
// Keep in sync with Sale and the sales migration.
var SaleFields = []SaleField{
	{"id", "BigAutoField"},
	{"order_id", "CharField"},
	{"order_date", "DateField"},
	{"status", "CharField"},
	{"fulfilment", "CharField"},
	{"sales_channel", "CharField"},
	{"ship_service_level", "CharField"},
	{"style", "CharField"},
	{"sku", "CharField"},
	{"category", "CharField"},
	{"size", "CharField"},
	{"asin", "CharField"},
	{"courier_status", "CharField"},
	{"qty", "IntegerField"},
	{"currency", "CharField"},
	{"amount", "DecimalField"},
	{"ship_city", "CharField"},
	{"ship_state", "CharField"},
	{"ship_postal_code", "CharField"},
	{"ship_country", "CharField"},
	{"promotion_ids", "TextField"},
	{"b2b", "BooleanField"},
	{"fulfilled_by", "CharField"},
}

func SaleSchema() map[string]string {
	schema := make(map[string]string, len(SaleFields))
	for _, f := range SaleFields {
		schema[f.Name] = f.Type
	}
	return schema
}
