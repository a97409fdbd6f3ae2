package usecase

// ReconcileBatchSize is the page size used when walking all accounts.
const ReconcileBatchSize = 500
