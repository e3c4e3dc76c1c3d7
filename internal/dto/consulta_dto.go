package dto

// ConsultaDNIResponse mirrors the fields the padrón lookup returns for a DNI.
type ConsultaDNIResponse struct {
	DNI             string `json:"dni"`
	Nombres         string `json:"nombres"`
	ApellidoPaterno string `json:"apellido_paterno"`
	ApellidoMaterno string `json:"apellido_materno"`
}

// ConsultaRUCResponse mirrors the fields the SUNAT lookup returns for a RUC.
type ConsultaRUCResponse struct {
	RUC         string `json:"ruc"`
	RazonSocial string `json:"razon_social"`
	Estado      string `json:"estado"`
	Condicion   string `json:"condicion"`
	Direccion   string `json:"direccion"`
}
