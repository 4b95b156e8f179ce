package repository

// Schema versions are applied in order and recorded in schema_version.

var postgresMigrations = []string{
	`CREATE TABLE IF NOT EXISTS assets (
		id             UUID PRIMARY KEY,
		symbol         TEXT NOT NULL,
		name           TEXT NOT NULL,
		asset_type     TEXT NOT NULL CHECK (asset_type IN ('stock', 'crypto')),
		quantity       NUMERIC(28, 10) NOT NULL CHECK (quantity > 0),
		purchase_price NUMERIC(28, 10) NOT NULL CHECK (purchase_price > 0),
		purchase_date  TIMESTAMPTZ NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_assets_symbol ON assets (asset_type, symbol);

	CREATE TABLE IF NOT EXISTS alerts (
		id                        UUID PRIMARY KEY,
		symbol                    TEXT NOT NULL,
		asset_type                TEXT NOT NULL CHECK (asset_type IN ('stock', 'crypto')),
		alert_type                TEXT NOT NULL CHECK (alert_type IN ('price_above', 'price_below', 'percent_change')),
		target_value              DOUBLE PRECISION NOT NULL,
		current_price_at_creation DOUBLE PRECISION,
		notification_channel      TEXT NOT NULL DEFAULT 'email',
		email                     TEXT NOT NULL DEFAULT '',
		telegram_chat_id          TEXT NOT NULL DEFAULT '',
		message                   TEXT NOT NULL DEFAULT '',
		status                    TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'triggered', 'disabled')),
		triggered_at              TIMESTAMPTZ,
		triggered_price           DOUBLE PRECISION,
		created_at                TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_alerts_status ON alerts (status);
	CREATE INDEX IF NOT EXISTS idx_alerts_symbol ON alerts (symbol);`,
}

var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS assets (
		id             TEXT PRIMARY KEY,
		symbol         TEXT NOT NULL,
		name           TEXT NOT NULL,
		asset_type     TEXT NOT NULL CHECK (asset_type IN ('stock', 'crypto')),
		quantity       TEXT NOT NULL,
		purchase_price TEXT NOT NULL,
		purchase_date  TEXT NOT NULL,
		created_at     TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_assets_symbol ON assets (asset_type, symbol);

	CREATE TABLE IF NOT EXISTS alerts (
		id                        TEXT PRIMARY KEY,
		symbol                    TEXT NOT NULL,
		asset_type                TEXT NOT NULL CHECK (asset_type IN ('stock', 'crypto')),
		alert_type                TEXT NOT NULL CHECK (alert_type IN ('price_above', 'price_below', 'percent_change')),
		target_value              REAL NOT NULL,
		current_price_at_creation REAL,
		notification_channel      TEXT NOT NULL DEFAULT 'email',
		email                     TEXT NOT NULL DEFAULT '',
		telegram_chat_id          TEXT NOT NULL DEFAULT '',
		message                   TEXT NOT NULL DEFAULT '',
		status                    TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'triggered', 'disabled')),
		triggered_at              TEXT,
		triggered_price           REAL,
		created_at                TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_alerts_status ON alerts (status);
	CREATE INDEX IF NOT EXISTS idx_alerts_symbol ON alerts (symbol);`,
}
