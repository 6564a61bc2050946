package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name"`
	Role            string `json:"role"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SessionID       string      `json:"session_id"`
	WorldID         string      `json:"world_id"`
	WorldParams     WorldParams `json:"world_params"`
}

type WorldParams struct {
	Seed            int64   `json:"seed"`
	ChunkSize       float64 `json:"chunk_size"`
	RenderDistance  float64 `json:"render_distance"`
	CleanupDistance float64 `json:"cleanup_distance"`
	TickRateHz      int     `json:"tick_rate_hz"`
}

// POS (pilot -> server): observer world position for the next tick.
type PosMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Pos             [3]float64 `json:"pos"`
}

// SNAPSHOT (server -> client): the complete set of currently-visible terrain
// content after one tick. Anything absent from it must not be drawn.
type SnapshotMsg struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	Tick            uint64        `json:"tick"`
	Observer        [3]float64    `json:"observer"`
	GroundTiles     []GroundTile  `json:"ground_tiles"`
	Features        []Feature     `json:"features"`
	Stats           SnapshotStats `json:"stats"`
}

type GroundTile struct {
	Coord  [2]int     `json:"coord"`
	Center [3]float64 `json:"center"`
	Size   float64    `json:"size"`
	Tint   string     `json:"tint"`
}

type Feature struct {
	ID        string     `json:"id"`
	Kind      string     `json:"kind"`
	Coord     [2]int     `json:"coord"`
	Pos       [3]float64 `json:"pos"`
	Size      [3]float64 `json:"size"`
	Color     string     `json:"color"`
	Roughness float64    `json:"roughness"`
	Metalness float64    `json:"metalness"`
}

type SnapshotStats struct {
	Generated      int `json:"generated"`
	Evicted        int `json:"evicted"`
	ActiveChunks   int `json:"active_chunks"`
	ActiveFeatures int `json:"active_features"`
}
