package models

// Account is a stored user record. DynamoDB compound key: username (HASH)
// plus index (RANGE), where index is the partition label derived from the
// username's first letter.
//
// Password holds an argon2id digest, never the plain secret; Salt is the
// per-account random salt the digest was derived with. Neither field is
// echoed in responses.
type Account struct {
	Username         string `dynamodbav:"username" json:"username"`
	Index            string `dynamodbav:"index" json:"index"`
	Password         []byte `dynamodbav:"password" json:"-"`
	Salt             []byte `dynamodbav:"salt" json:"-"`
	Email            string `dynamodbav:"email,omitempty" json:"email,omitempty"`
	CreatedTimestamp int64  `dynamodbav:"created_timestamp" json:"created_timestamp"`
}

// Redacted returns a copy of the account safe to echo to callers.
func (a *Account) Redacted() *Account {
	c := *a
	c.Password = nil
	c.Salt = nil
	return &c
}
