package sqlstore

// Dates, times and timestamps are stored as fixed-layout strings so both
// backends compare them lexically the same way.

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS departments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name VARCHAR(255) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS client_accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL DEFAULT '',
		role VARCHAR(16) NOT NULL,
		manager_id INTEGER NULL REFERENCES users(id),
		department_id INTEGER NULL REFERENCES departments(id),
		client_account_id INTEGER NULL REFERENCES client_accounts(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_manager ON users(manager_id)`,
	`CREATE INDEX IF NOT EXISTS idx_users_client_account ON users(client_account_id)`,
	`CREATE TABLE IF NOT EXISTS work_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_type VARCHAR(16) NOT NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status VARCHAR(32) NOT NULL,
		created_by INTEGER NOT NULL REFERENCES users(id),
		assigned_to INTEGER NULL REFERENCES users(id),
		created_at VARCHAR(19) NOT NULL,
		status_updated_at VARCHAR(19) NOT NULL,
		attachments TEXT NOT NULL DEFAULT '[]',
		provided_description TEXT NULL,
		provided_attachments TEXT NOT NULL DEFAULT '[]'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_work_items_created_by ON work_items(created_by)`,
	`CREATE INDEX IF NOT EXISTS idx_work_items_assigned_to ON work_items(assigned_to)`,
	`CREATE TABLE IF NOT EXISTS delegation_tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		unique_id VARCHAR(64) NOT NULL UNIQUE,
		task_type VARCHAR(16) NOT NULL DEFAULT 'delegation',
		description TEXT NOT NULL,
		planned_date VARCHAR(10) NOT NULL,
		planned_time VARCHAR(8) NOT NULL,
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		doer_id INTEGER NOT NULL REFERENCES users(id),
		manager_id INTEGER NULL REFERENCES users(id),
		assigned_by INTEGER NULL REFERENCES users(id),
		assigned_by_type VARCHAR(16) NOT NULL DEFAULT 'manager',
		department_id INTEGER NULL REFERENCES departments(id),
		status VARCHAR(16) NOT NULL DEFAULT 'pending',
		actual_date VARCHAR(10) NULL,
		actual_time VARCHAR(8) NULL,
		is_delayed INTEGER NOT NULL DEFAULT 0,
		delay_duration VARCHAR(64) NOT NULL DEFAULT '',
		shifted_count INTEGER NOT NULL DEFAULT 0,
		shifted_from VARCHAR(64) NULL,
		shifted_to VARCHAR(64) NULL,
		created_at VARCHAR(19) NOT NULL,
		updated_at VARCHAR(19) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_doer ON delegation_tasks(doer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_manager ON delegation_tasks(manager_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_planned ON delegation_tasks(planned_date, planned_time)`,
	`CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entity VARCHAR(16) NOT NULL,
		entity_id INTEGER NOT NULL,
		event_type VARCHAR(32) NOT NULL,
		actor_id INTEGER NOT NULL,
		old_value TEXT NULL,
		new_value TEXT NULL,
		created_at VARCHAR(19) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_entity ON events(entity, entity_id)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS departments (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		UNIQUE KEY uq_departments_name (name)
	)`,
	`CREATE TABLE IF NOT EXISTS client_accounts (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL DEFAULT '',
		role VARCHAR(16) NOT NULL,
		manager_id BIGINT NULL,
		department_id BIGINT NULL,
		client_account_id BIGINT NULL,
		KEY idx_users_manager (manager_id),
		KEY idx_users_client_account (client_account_id)
	)`,
	`CREATE TABLE IF NOT EXISTS work_items (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		item_type VARCHAR(16) NOT NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		status VARCHAR(32) NOT NULL,
		created_by BIGINT NOT NULL,
		assigned_to BIGINT NULL,
		created_at VARCHAR(19) NOT NULL,
		status_updated_at VARCHAR(19) NOT NULL,
		attachments TEXT NOT NULL,
		provided_description TEXT NULL,
		provided_attachments TEXT NOT NULL,
		KEY idx_work_items_created_by (created_by),
		KEY idx_work_items_assigned_to (assigned_to)
	)`,
	`CREATE TABLE IF NOT EXISTS delegation_tasks (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		unique_id VARCHAR(64) NOT NULL,
		task_type VARCHAR(16) NOT NULL DEFAULT 'delegation',
		description TEXT NOT NULL,
		planned_date VARCHAR(10) NOT NULL,
		planned_time VARCHAR(8) NOT NULL,
		duration_minutes INT NOT NULL DEFAULT 0,
		doer_id BIGINT NOT NULL,
		manager_id BIGINT NULL,
		assigned_by BIGINT NULL,
		assigned_by_type VARCHAR(16) NOT NULL DEFAULT 'manager',
		department_id BIGINT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'pending',
		actual_date VARCHAR(10) NULL,
		actual_time VARCHAR(8) NULL,
		is_delayed TINYINT NOT NULL DEFAULT 0,
		delay_duration VARCHAR(64) NOT NULL DEFAULT '',
		shifted_count INT NOT NULL DEFAULT 0,
		shifted_from VARCHAR(64) NULL,
		shifted_to VARCHAR(64) NULL,
		created_at VARCHAR(19) NOT NULL,
		updated_at VARCHAR(19) NOT NULL,
		UNIQUE KEY uq_tasks_unique_id (unique_id),
		KEY idx_tasks_doer (doer_id),
		KEY idx_tasks_manager (manager_id),
		KEY idx_tasks_planned (planned_date, planned_time)
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		entity VARCHAR(16) NOT NULL,
		entity_id BIGINT NOT NULL,
		event_type VARCHAR(32) NOT NULL,
		actor_id BIGINT NOT NULL,
		old_value TEXT NULL,
		new_value TEXT NULL,
		created_at VARCHAR(19) NOT NULL,
		KEY idx_events_entity (entity, entity_id)
	)`,
}
