package models

// PanelServer describes a server as reported by the Pterodactyl
// application API.
type PanelServer struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Identifier  string `json:"identifier"`
	Description string `json:"description"`
	Suspended   bool   `json:"suspended"`
	Node        int    `json:"node"`
	Limits      struct {
		Memory int `json:"memory"`
		Swap   int `json:"swap"`
		Disk   int `json:"disk"`
		IO     int `json:"io"`
		CPU    int `json:"cpu"`
	} `json:"limits"`
}

// PanelUser describes a panel account as reported by the Pterodactyl
// application API.
type PanelUser struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Language  string `json:"language"`
	RootAdmin bool   `json:"root_admin"`
	CreatedAt string `json:"created_at"`
}

// PanelResources holds live resource usage for one server.
type PanelResources struct {
	State     string `json:"current_state"`
	Resources struct {
		MemoryBytes    int64   `json:"memory_bytes"`
		CPUAbsolute    float64 `json:"cpu_absolute"`
		DiskBytes      int64   `json:"disk_bytes"`
		NetworkRxBytes int64   `json:"network_rx_bytes"`
		NetworkTxBytes int64   `json:"network_tx_bytes"`
	} `json:"resources"`
}

// NewPanelUser carries the fields required to create a panel account.
type NewPanelUser struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// Power signal constants accepted by the panel power endpoint.
const (
	PowerStart   = "start"
	PowerStop    = "stop"
	PowerRestart = "restart"
	PowerKill    = "kill"
)
