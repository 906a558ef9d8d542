package dto

type DeviceRequest struct {
	IP string `json:"ip"`
	UA string `json:"ua"`
}
