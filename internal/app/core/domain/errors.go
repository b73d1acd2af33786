package domain

import "errors"

var (
	// ErrNotEnoughFunds 可用餘額不足
	ErrNotEnoughFunds = errors.New("account doesnt have enough funds")

	// ErrTxDoesntExist 找不到被引用的交易
	ErrTxDoesntExist = errors.New("requested transaction doesnt exist")

	// ErrInvalidDispute 被引用的交易類型不可爭議 (只有存款可被爭議)
	ErrInvalidDispute = errors.New("invalid transaction to dispute")

	// ErrUnauthorized 不能爭議別人的交易
	ErrUnauthorized = errors.New("cannot dispute tx that the client doesnt own")

	// ErrTxAlreadyDisputed 交易已在爭議中
	ErrTxAlreadyDisputed = errors.New("transaction is already under dispute")

	// ErrTxNotUnderDispute 交易不在爭議中
	ErrTxNotUnderDispute = errors.New("transaction must be under dispute")

	// ErrInternal 內部數學錯誤 (例如負數金額)
	ErrInternal = errors.New("internal math error")

	// ErrAccountLocked 帳戶已鎖定，拒絕所有後續交易
	ErrAccountLocked = errors.New("account is locked")

	// ErrAccountNotFound 找不到帳戶
	ErrAccountNotFound = errors.New("account not found")

	// ErrMalformedRecord 來源紀錄無法解析 (跳過，不中斷整批重放)
	ErrMalformedRecord = errors.New("malformed transaction record")
)
