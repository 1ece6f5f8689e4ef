package notify

import "fmt"

// PaymentConfirmedMessage builds the operator notification sent once a
// fiat payment has been matched to a pending transaction.
func PaymentConfirmedMessage(toEmail, transactionID, amount string) Message {
	return Message{
		ToEmail: toEmail,
		Subject: fmt.Sprintf("Payment confirmed for transaction %s", transactionID),
		Body:    fmt.Sprintf("Transaction %s: fiat payment of %s confirmed, submitting on-chain transfer.", transactionID, amount),
	}
}

// TransactionCompletedMessage builds the operator notification sent once a
// transaction reaches its terminal completed state.
func TransactionCompletedMessage(toEmail, transactionID string) Message {
	return Message{
		ToEmail: toEmail,
		Subject: fmt.Sprintf("Transaction %s completed", transactionID),
		Body:    fmt.Sprintf("Transaction %s completed successfully.", transactionID),
	}
}

// RefundIssuedMessage builds the operator notification sent once a refund
// has been initiated or submitted for a transaction, with reason explaining
// why.
func RefundIssuedMessage(toEmail, transactionID, reason string) Message {
	return Message{
		ToEmail: toEmail,
		Subject: fmt.Sprintf("Refund issued for transaction %s", transactionID),
		Body:    fmt.Sprintf("Transaction %s is being refunded: %s.", transactionID, reason),
	}
}

// TransactionFailedMessage builds the operator notification sent once a
// transaction lands in a terminal failed state requiring manual review.
func TransactionFailedMessage(toEmail, transactionID, reason string) Message {
	return Message{
		ToEmail: toEmail,
		Subject: fmt.Sprintf("Transaction %s failed, manual review required", transactionID),
		Body:    fmt.Sprintf("Transaction %s failed: %s.", transactionID, reason),
	}
}
