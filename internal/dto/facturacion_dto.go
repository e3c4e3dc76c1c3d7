package dto

// FacturacionJob is the payload serialized into the Redis queue when a sale
// completes and a comprobante must be emitted against SUNAT.
type FacturacionJob struct {
	VentaID         string `json:"venta_id"`
	Tipo            string `json:"tipo"` // boleta | factura
	ReceptorTipoDoc string `json:"receptor_tipo_doc,omitempty"`
	ReceptorNumDoc  string `json:"receptor_num_doc,omitempty"`
	ReceptorNombre  string `json:"receptor_nombre,omitempty"`
	Email           string `json:"email,omitempty"`
	Intento         int    `json:"intento"`
}

// EmailJob is the payload for the email worker queue.
type EmailJob struct {
	Para     string `json:"para"`
	Asunto   string `json:"asunto"`
	Cuerpo   string `json:"cuerpo"`
	AdjuntoPDF string `json:"adjunto_pdf,omitempty"`
	Intento  int    `json:"intento"`
}

type ComprobanteResponse struct {
	ID        string  `json:"id"`
	VentaID   string  `json:"venta_id"`
	Tipo      string  `json:"tipo"`
	Serie     string  `json:"serie"`
	Numero    int     `json:"numero"`
	Estado    string  `json:"estado"`
	HashCPE   *string `json:"hash_cpe,omitempty"`
	EnlacePDF *string `json:"enlace_pdf,omitempty"`
	EnlaceXML *string `json:"enlace_xml,omitempty"`
	LastError *string `json:"last_error,omitempty"`
}
