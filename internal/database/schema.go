package database

import (
	"context"
	"database/sql"
)

// schema holds the CREATE TABLE statements executed at startup. Plain DDL
// instead of a migration framework: the schema is small and additive, and
// IF NOT EXISTS makes the bootstrap idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(32) NOT NULL DEFAULT 'visitor',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS access_tokens (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL UNIQUE,
		last_used_at TIMESTAMP NULL DEFAULT NULL,
		expires_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_tokens_user FOREIGN KEY (user_id)
			REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS active_sessions (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		ip_address VARCHAR(64) NULL,
		user_agent VARCHAR(512) NULL,
		last_activity TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_sessions_user FOREIGN KEY (user_id)
			REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS study_cases (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		nom_etude VARCHAR(255) NOT NULL,
		date_debut DATE NOT NULL,
		date_fin DATE NOT NULL,
		timing_attendu TIME NOT NULL,
		timing_reelle TIME NOT NULL,
		cadence_attendu DECIMAL(8,2) NOT NULL,
		cadence_reelle DECIMAL(8,2) NOT NULL,
		zip_file VARCHAR(512) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS comments (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		study_case_id BIGINT UNSIGNED NOT NULL,
		comment TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		CONSTRAINT fk_comments_user FOREIGN KEY (user_id)
			REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_comments_case FOREIGN KEY (study_case_id)
			REFERENCES study_cases(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS b2b_contacts (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		entreprise_id VARCHAR(64) NOT NULL,
		nom_entreprise VARCHAR(255) NOT NULL,
		tel VARCHAR(32) NOT NULL,
		tel2 VARCHAR(32) NULL,
		tel3 VARCHAR(32) NULL,
		siret VARCHAR(32) NOT NULL,
		date_creation DATE NOT NULL,
		tranche_effectifs VARCHAR(32) NOT NULL,
		categorie_juridique VARCHAR(32) NOT NULL,
		activite_principale VARCHAR(255) NOT NULL,
		adresse VARCHAR(255) NOT NULL,
		code_postal VARCHAR(16) NOT NULL,
		commune VARCHAR(128) NOT NULL,
		dept VARCHAR(8) NOT NULL,
		secteur VARCHAR(64) NOT NULL,
		region13 VARCHAR(64) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS b2c_contacts (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		nom VARCHAR(128) NOT NULL,
		tel VARCHAR(32) NOT NULL,
		age INT NOT NULL,
		sexe CHAR(1) NOT NULL,
		dep VARCHAR(8) NOT NULL,
		region13 VARCHAR(64) NOT NULL,
		type_tel VARCHAR(16) NOT NULL,
		habitat VARCHAR(16) NOT NULL,
		csp VARCHAR(64) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates all tables that are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
