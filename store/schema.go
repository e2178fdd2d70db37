package store

// schemaSQL defines the drug database structure. Creation is idempotent so a
// build can be re-invoked against an existing file.
//
// products and biologics carry uniqueness constraints and are loaded with
// INSERT OR REPLACE, which collapses duplicate keys within one publication.
// The Purple Book lists one row per presentation of a BLA and the last row
// wins. patents and exclusivity have no uniqueness constraint.
//
// The *_fts virtual tables are FTS5 external-content indexes over the name
// columns. They are not trigger-maintained: the builder repopulates them
// wholesale after each bulk load.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS products (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    ingredient TEXT NOT NULL DEFAULT '',
    dosage_form TEXT NOT NULL DEFAULT '',
    route TEXT NOT NULL DEFAULT '',
    trade_name TEXT NOT NULL DEFAULT '',
    applicant TEXT NOT NULL DEFAULT '',
    applicant_full_name TEXT NOT NULL DEFAULT '',
    strength TEXT NOT NULL DEFAULT '',
    appl_type TEXT NOT NULL,
    appl_no TEXT NOT NULL,
    product_no TEXT NOT NULL,
    te_code TEXT NOT NULL DEFAULT '',
    approval_date TEXT NOT NULL DEFAULT '',
    rld TEXT NOT NULL DEFAULT '',
    rs TEXT NOT NULL DEFAULT '',
    marketing_type TEXT NOT NULL DEFAULT '',
    UNIQUE(appl_type, appl_no, product_no)
);

CREATE TABLE IF NOT EXISTS patents (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    appl_type TEXT NOT NULL,
    appl_no TEXT NOT NULL,
    product_no TEXT NOT NULL DEFAULT '',
    patent_no TEXT NOT NULL DEFAULT '',
    patent_expire_date TEXT NOT NULL DEFAULT '',
    drug_substance_flag TEXT NOT NULL DEFAULT '',
    drug_product_flag TEXT NOT NULL DEFAULT '',
    patent_use_code TEXT NOT NULL DEFAULT '',
    delist_flag TEXT NOT NULL DEFAULT '',
    submission_date TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS exclusivity (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    appl_type TEXT NOT NULL,
    appl_no TEXT NOT NULL,
    product_no TEXT NOT NULL DEFAULT '',
    exclusivity_code TEXT NOT NULL DEFAULT '',
    exclusivity_date TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS biologics (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    applicant_name TEXT NOT NULL DEFAULT '',
    bla_number TEXT NOT NULL UNIQUE,
    proper_name TEXT NOT NULL DEFAULT '',
    proprietary_name TEXT NOT NULL DEFAULT '',
    bla_type TEXT NOT NULL DEFAULT '',
    strength TEXT NOT NULL DEFAULT '',
    dosage_form TEXT NOT NULL DEFAULT '',
    route TEXT NOT NULL DEFAULT '',
    marketing_status TEXT NOT NULL DEFAULT '',
    licensure_date TEXT NOT NULL DEFAULT '',
    ref_product_proper_name TEXT NOT NULL DEFAULT '',
    ref_product_proprietary_name TEXT NOT NULL DEFAULT '',
    biosimilar INTEGER NOT NULL DEFAULT 0,
    interchangeable INTEGER NOT NULL DEFAULT 0,
    interchangeable_exclusivity TEXT NOT NULL DEFAULT '',
    exclusivity_expiration TEXT NOT NULL DEFAULT '',
    orphan_exclusivity TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_products_ingredient ON products(ingredient);
CREATE INDEX IF NOT EXISTS idx_products_trade_name ON products(trade_name);
CREATE INDEX IF NOT EXISTS idx_products_application ON products(appl_type, appl_no);
CREATE INDEX IF NOT EXISTS idx_products_appl_no ON products(appl_no);
CREATE INDEX IF NOT EXISTS idx_products_te_code ON products(te_code);
CREATE INDEX IF NOT EXISTS idx_products_rld ON products(rld);

CREATE INDEX IF NOT EXISTS idx_patents_application ON patents(appl_type, appl_no);
CREATE INDEX IF NOT EXISTS idx_patents_patent_no ON patents(patent_no);
CREATE INDEX IF NOT EXISTS idx_patents_expire_date ON patents(patent_expire_date);

CREATE INDEX IF NOT EXISTS idx_exclusivity_application ON exclusivity(appl_type, appl_no);
CREATE INDEX IF NOT EXISTS idx_exclusivity_code ON exclusivity(exclusivity_code);
CREATE INDEX IF NOT EXISTS idx_exclusivity_date ON exclusivity(exclusivity_date);

CREATE INDEX IF NOT EXISTS idx_biologics_proper_name ON biologics(proper_name);
CREATE INDEX IF NOT EXISTS idx_biologics_proprietary_name ON biologics(proprietary_name);
CREATE INDEX IF NOT EXISTS idx_biologics_ref_proper_name ON biologics(ref_product_proper_name);
CREATE INDEX IF NOT EXISTS idx_biologics_flags ON biologics(biosimilar, interchangeable);

CREATE VIRTUAL TABLE IF NOT EXISTS products_fts USING fts5(
    ingredient,
    trade_name,
    applicant_full_name,
    content='products',
    content_rowid='id'
);

CREATE VIRTUAL TABLE IF NOT EXISTS biologics_fts USING fts5(
    proper_name,
    proprietary_name,
    applicant_name,
    content='biologics',
    content_rowid='id'
);
`
