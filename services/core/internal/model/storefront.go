package model

// Storefront is the public catalog page of one merchant.
type Storefront struct {
	Profile  Profile   `json:"profile"`
	Products []Product `json:"products"`
}

// CheckoutView is what the checkout page needs before submission.
type CheckoutView struct {
	StoreName string   `json:"store_name"`
	YapeQRURL string   `json:"yape_qr_url"`
	PlinQRURL string   `json:"plin_qr_url"`
	Cart      CartView `json:"cart"`
}

type CheckoutResult struct {
	Order      OrderWithItems `json:"order"`
	RedirectTo string         `json:"redirect_to"`
}

type ImageUploadResponse struct {
	Bucket string `json:"bucket"`
	URL    string `json:"url"`
}
