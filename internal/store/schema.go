// internal/store/schema.go

package store

// Schema is the MySQL DDL for every table the storefront reads or writes.
// Applied by `productpraat -migrate`; statements are idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id             CHAR(36)      NOT NULL PRIMARY KEY,
		brand          VARCHAR(120)  NOT NULL,
		model          VARCHAR(200)  NOT NULL,
		category       VARCHAR(40)   NOT NULL,
		score          DECIMAL(4,2)  NOT NULL DEFAULT 0,
		price          DECIMAL(10,2) NOT NULL DEFAULT 0,
		slug           VARCHAR(100)  NOT NULL,
		ean            VARCHAR(20)   NOT NULL DEFAULT '',
		summary        TEXT          NOT NULL,
		images         JSON          NOT NULL,
		pros           JSON          NOT NULL,
		cons           JSON          NOT NULL,
		affiliate_link VARCHAR(1024) NOT NULL DEFAULT '',
		created_at     DATETIME      NOT NULL,
		updated_at     DATETIME      NOT NULL,
		UNIQUE KEY uq_products_category_slug (category, slug)
	)`,
	`CREATE TABLE IF NOT EXISTS articles (
		id         CHAR(36)      NOT NULL PRIMARY KEY,
		title      VARCHAR(255)  NOT NULL,
		category   VARCHAR(40)   NOT NULL DEFAULT '',
		type       VARCHAR(20)   NOT NULL,
		slug       VARCHAR(100)  NOT NULL,
		summary    TEXT          NOT NULL,
		body       MEDIUMTEXT    NOT NULL,
		author     VARCHAR(120)  NOT NULL DEFAULT '',
		image_url  VARCHAR(1024) NOT NULL DEFAULT '',
		created_at DATETIME      NOT NULL,
		updated_at DATETIME      NOT NULL,
		UNIQUE KEY uq_articles_slug (slug)
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id         CHAR(36)     NOT NULL PRIMARY KEY,
		product_id CHAR(36)     NOT NULL,
		author     VARCHAR(120) NOT NULL,
		rating     TINYINT      NOT NULL,
		title      VARCHAR(255) NOT NULL DEFAULT '',
		body       TEXT         NOT NULL,
		created_at DATETIME     NOT NULL,
		CONSTRAINT fk_reviews_product FOREIGN KEY (product_id) REFERENCES products (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS affiliate_clicks (
		id         BIGINT      NOT NULL AUTO_INCREMENT PRIMARY KEY,
		product_id CHAR(36)    NOT NULL,
		source     VARCHAR(40) NOT NULL,
		country    CHAR(2)     NOT NULL DEFAULT '',
		clicked_at DATETIME    NOT NULL,
		KEY ix_clicks_product (product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS route_alias (
		alias_path  VARCHAR(255) NOT NULL PRIMARY KEY,
		target_path VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36)     NOT NULL PRIMARY KEY,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(100) NOT NULL,
		created_at    DATETIME     NOT NULL,
		UNIQUE KEY uq_users_email (email)
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		token      CHAR(64) NOT NULL PRIMARY KEY,
		user_id    CHAR(36) NOT NULL,
		expires_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL,
		KEY ix_sessions_user (user_id)
	)`,
}
