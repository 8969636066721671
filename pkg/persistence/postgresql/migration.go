package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Records of every logical table share one JSONB-backed relation
			CREATE TABLE records (
				seq BIGSERIAL,
				tbl VARCHAR(255) NOT NULL,
				id VARCHAR(64) NOT NULL,
				fields JSONB NOT NULL DEFAULT '{}'::jsonb,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				PRIMARY KEY (tbl, id)
			);

			CREATE INDEX idx_records_tbl_seq ON records(tbl, seq);
			CREATE INDEX idx_records_fields ON records USING GIN (fields);
		`,
	}
}
