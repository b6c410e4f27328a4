package country

type Country struct {
	ID             string `json:"id" db:"country_id"`
	Name           string `json:"name" db:"name"`
	Code           string `json:"code" db:"code"`
	CurrencyCode   string `json:"currencyCode" db:"currency_code"`
	CurrencySymbol string `json:"currencySymbol" db:"currency_symbol"`
}

type CountryNew struct {
	Name           string `json:"name" validate:"required"`
	Code           string `json:"code" validate:"required"`
	CurrencyCode   string `json:"currencyCode" validate:"required"`
	CurrencySymbol string `json:"currencySymbol" validate:"required"`
}

type CountryUp struct {
	Name           *string `json:"name"`
	Code           *string `json:"code"`
	CurrencyCode   *string `json:"currencyCode"`
	CurrencySymbol *string `json:"currencySymbol"`
}
